package calculation

import "carbon-scribe/farm-emissions/internal/farm"

type beefModel struct{}

func (beefModel) dryMatterIntake(g farm.AnimalGroup) float64 {
	return metabolicIntake(g)
}

func (beefModel) nitrogenRetained(g farm.AnimalGroup) float64 {
	return dailyGain(g) * nitrogenInGain
}

// NewBeefCalculator creates the calculator for cow-calf, backgrounding and finishing
func NewBeefCalculator() *LivestockCalculator {
	return &LivestockCalculator{
		family:      farm.FamilyBeef,
		name:        "Beef",
		description: "Beef cattle enteric and manure emissions from diet energy",
		model:       beefModel{},
	}
}

type dairyModel struct{}

func (dairyModel) dryMatterIntake(g farm.AnimalGroup) float64 {
	if g.GroupType == farm.AnimalDairyLactatingCow {
		return 0.0185*g.AverageWeight() + 0.305*g.MilkProduction
	}
	return metabolicIntake(g)
}

func (dairyModel) nitrogenRetained(g farm.AnimalGroup) float64 {
	return dailyGain(g)*nitrogenInGain + g.MilkProduction*nitrogenInMilk
}

// NewDairyCalculator creates the dairy calculator. Milk yield raises intake
// and the nitrogen leaving the animal in milk.
func NewDairyCalculator() *LivestockCalculator {
	return &LivestockCalculator{
		family:      farm.FamilyDairy,
		name:        "Dairy",
		description: "Dairy cattle emissions including milk energy and nitrogen",
		model:       dairyModel{},
	}
}

type sheepModel struct{}

func (sheepModel) dryMatterIntake(g farm.AnimalGroup) float64 {
	return 0.03 * g.AverageWeight()
}

func (sheepModel) nitrogenRetained(g farm.AnimalGroup) float64 {
	return dailyGain(g)*nitrogenInGain + g.WoolProduction/365*nitrogenInWool
}

// NewSheepCalculator creates the sheep calculator
func NewSheepCalculator() *LivestockCalculator {
	return &LivestockCalculator{
		family:      farm.FamilySheep,
		name:        "Sheep",
		description: "Sheep emissions including wool nitrogen",
		model:       sheepModel{},
	}
}

type swineModel struct{}

func (swineModel) dryMatterIntake(g farm.AnimalGroup) float64 {
	return 0.04 * g.AverageWeight()
}

func (swineModel) nitrogenRetained(g farm.AnimalGroup) float64 {
	return dailyGain(g) * nitrogenInGain
}

// NewSwineCalculator creates the swine calculator
func NewSwineCalculator() *LivestockCalculator {
	return &LivestockCalculator{
		family:      farm.FamilySwine,
		name:        "Swine",
		description: "Swine emissions; enteric methane follows the low Ym of swine diets",
		model:       swineModel{},
	}
}
