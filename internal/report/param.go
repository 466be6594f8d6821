package report

// ParamKind tags a hyperparameter value as either a scalar or a nested
// parameter set coming from a meta-estimator.
type ParamKind int

const (
	ParamScalar ParamKind = iota
	ParamNested
)

type Param struct {
	Name  string
	Value ParamValue
}

// ParamValue holds exactly one of Scalar or Nested, selected by Kind.
type ParamValue struct {
	Kind   ParamKind
	Scalar any
	Nested []Param
}

func Scalar(name string, value any) Param {
	return Param{
		Name:  name,
		Value: ParamValue{Kind: ParamScalar, Scalar: value},
	}
}

func Nested(name string, params ...Param) Param {
	return Param{
		Name:  name,
		Value: ParamValue{Kind: ParamNested, Nested: params},
	}
}

// flattenParams splices nested parameter sets in place: a nested value
// contributes its entries under their own names, the enclosing name is
// dropped.
func flattenParams(params []Param, row *Row) {
	for _, p := range params {
		switch p.Value.Kind {
		case ParamNested:
			flattenParams(p.Value.Nested, row)
		default:
			row.Set(p.Name, p.Value.Scalar)
		}
	}
}
