package dataset

import (
	"fmt"
	"slices"
)

// Schema variants.
const (
	VariantReduced = "reduced"
	VariantFull    = "full"
)

// TargetColumn is the Ames sale price column.
const TargetColumn = "SalePrice"

func bound(v float64) *float64 { return &v }

func num(name, def string, lo, hi *float64) Column {
	return Column{Name: name, Kind: Numeric, Default: def, Min: lo, Max: hi}
}

func cat(name, def string) Column {
	return Column{Name: name, Kind: Categorical, Default: def}
}

func input(label string, c Column) Column {
	c.Input = true
	c.Label = label
	return c
}

var (
	nonNegative = bound(0)
	yearMin     = bound(1800)
	yearMax     = bound(2100)
)

// formInputs are the eight columns a user fills in, in form order.
func formInputs() []Column {
	return []Column{
		input("Lot area (sq ft)", num("Lot Area", "5000", nonNegative, nil)),
		input("Overall quality (1-10)", num("Overall Qual", "5", bound(1), bound(10))),
		input("Year built", num("Year Built", "1990", yearMin, yearMax)),
		input("Basement area (sq ft)", num("Total Bsmt SF", "1000", nonNegative, nil)),
		input("First floor area (sq ft)", num("1st Flr SF", "1000", nonNegative, nil)),
		input("Full bathrooms", num("Full Bath", "2", nonNegative, nil)),
		input("Living area (sq ft)", num("Gr Liv Area", "1500", nonNegative, nil)),
		input("Garage capacity (cars)", num("Garage Cars", "1", nonNegative, nil)),
	}
}

// ReducedSchema returns the eight-column numeric schema.
func ReducedSchema() Schema {
	return Schema{Variant: VariantReduced, Target: TargetColumn, Columns: formInputs()}
}

// FullSchema returns every Ames column except the target, in file order.
func FullSchema() Schema {
	inputs := make(map[string]Column)
	for _, c := range formInputs() {
		inputs[c.Name] = c
	}
	in := func(name string) Column { return inputs[name] }

	cols := []Column{
		num("Order", "1", nonNegative, nil),
		num("PID", "0", nonNegative, nil),
		num("MS SubClass", "20", nonNegative, nil),
		cat("MS Zoning", "RL"),
		num("Lot Frontage", "60", nonNegative, nil),
		in("Lot Area"),
		cat("Street", "Pave"),
		cat("Alley", "NA"),
		cat("Lot Shape", "Reg"),
		cat("Land Contour", "Lvl"),
		cat("Utilities", "AllPub"),
		cat("Lot Config", "Inside"),
		cat("Land Slope", "Gtl"),
		cat("Neighborhood", "NAmes"),
		cat("Condition 1", "Norm"),
		cat("Condition 2", "Norm"),
		cat("Bldg Type", "1Fam"),
		cat("House Style", "1Story"),
		in("Overall Qual"),
		num("Overall Cond", "5", bound(1), bound(10)),
		in("Year Built"),
		num("Year Remod/Add", "2000", yearMin, yearMax),
		cat("Roof Style", "Gable"),
		cat("Roof Matl", "CompShg"),
		cat("Exterior 1st", "VinylSd"),
		cat("Exterior 2nd", "VinylSd"),
		cat("Mas Vnr Type", "None"),
		num("Mas Vnr Area", "0", nonNegative, nil),
		cat("Exter Qual", "TA"),
		cat("Exter Cond", "TA"),
		cat("Foundation", "PConc"),
		cat("Bsmt Qual", "TA"),
		cat("Bsmt Cond", "TA"),
		cat("Bsmt Exposure", "No"),
		cat("BsmtFin Type 1", "GLQ"),
		num("BsmtFin SF 1", "500", nonNegative, nil),
		cat("BsmtFin Type 2", "NA"),
		num("BsmtFin SF 2", "0", nonNegative, nil),
		num("Bsmt Unf SF", "400", nonNegative, nil),
		in("Total Bsmt SF"),
		cat("Heating", "GasA"),
		cat("Heating QC", "Ex"),
		cat("Central Air", "Y"),
		cat("Electrical", "SBrkr"),
		in("1st Flr SF"),
		num("2nd Flr SF", "0", nonNegative, nil),
		num("Low Qual Fin SF", "0", nonNegative, nil),
		in("Gr Liv Area"),
		num("Bsmt Full Bath", "1", nonNegative, nil),
		num("Bsmt Half Bath", "0", nonNegative, nil),
		in("Full Bath"),
		num("Half Bath", "1", nonNegative, nil),
		num("Bedroom AbvGr", "3", nonNegative, nil),
		num("Kitchen AbvGr", "1", nonNegative, nil),
		cat("Kitchen Qual", "TA"),
		num("TotRms AbvGrd", "6", nonNegative, nil),
		cat("Functional", "Typ"),
		num("Fireplaces", "0", nonNegative, nil),
		cat("Fireplace Qu", "NA"),
		cat("Garage Type", "Attchd"),
		num("Garage Yr Blt", "1990", yearMin, yearMax),
		cat("Garage Finish", "Unf"),
		in("Garage Cars"),
		num("Garage Area", "500", nonNegative, nil),
		cat("Garage Qual", "TA"),
		cat("Garage Cond", "TA"),
		cat("Paved Drive", "Y"),
		num("Wood Deck SF", "0", nonNegative, nil),
		num("Open Porch SF", "20", nonNegative, nil),
		num("Enclosed Porch", "0", nonNegative, nil),
		num("3Ssn Porch", "0", nonNegative, nil),
		num("Screen Porch", "0", nonNegative, nil),
		num("Pool Area", "0", nonNegative, nil),
		cat("Pool QC", "NA"),
		cat("Fence", "NA"),
		cat("Misc Feature", "NA"),
		num("Misc Val", "0", nonNegative, nil),
		num("Mo Sold", "6", bound(1), bound(12)),
		num("Yr Sold", "2010", yearMin, yearMax),
		cat("Sale Type", "WD"),
		cat("Sale Condition", "Normal"),
	}
	return Schema{Variant: VariantFull, Target: TargetColumn, Columns: cols}
}

// Variants lists the known schema variants.
func Variants() []string {
	return []string{VariantReduced, VariantFull}
}

// SchemaFor returns the preset schema for variant.
func SchemaFor(variant string) (Schema, error) {
	switch variant {
	case VariantReduced:
		return ReducedSchema(), nil
	case VariantFull:
		return FullSchema(), nil
	default:
		return Schema{}, fmt.Errorf("unknown schema variant %q (want one of %v)", variant, Variants())
	}
}

// IsKnownVariant reports whether variant names a preset schema.
func IsKnownVariant(variant string) bool {
	return slices.Contains(Variants(), variant)
}
