package loam_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/loam-lang/loam/pkg/loam"
	"github.com/vito/is"
)

func TestParseParams(t *testing.T) {
	for _, test := range []struct {
		Name     string
		Spec     string
		Operator bool
		Params   []loam.Param
	}{
		{
			Name: "empty",
			Spec: "",
		},
		{
			Name: "normal",
			Spec: "a b",
			Params: []loam.Param{
				{Name: "a"},
				{Name: "b"},
			},
		},
		{
			Name: "conventions",
			Spec: "'lit ^raw :soft rest...",
			Params: []loam.Param{
				{Name: "lit", Class: loam.ParamLiteral},
				{Name: "raw", Class: loam.ParamLiteralUnbound},
				{Name: "soft", Class: loam.ParamSoft},
				{Name: "rest", Class: loam.ParamVariadic},
			},
		},
		{
			Name: "optional",
			Spec: "a ?b ?'c",
			Params: []loam.Param{
				{Name: "a"},
				{Name: "b", Opt: true},
				{Name: "c", Class: loam.ParamLiteral, Opt: true},
			},
		},
		{
			Name: "types",
			Spec: "n:int branch:block|group any:any",
			Params: []loam.Param{
				{Name: "n", Types: loam.Types(loam.KindInt)},
				{Name: "branch", Types: loam.Types(loam.KindBlock, loam.KindGroup)},
				{Name: "any"},
			},
		},
		{
			Name:     "operator left",
			Spec:     "a:int b:int",
			Operator: true,
			Params: []loam.Param{
				{Name: "a", Class: loam.ParamOpLeft, Types: loam.Types(loam.KindInt)},
				{Name: "b", Types: loam.Types(loam.KindInt)},
			},
		},
	} {
		test := test
		t.Run(test.Name, func(t *testing.T) {
			is := is.New(t)

			params, err := loam.ParseParams(test.Name, test.Spec, test.Operator)
			is.NoErr(err)

			if diff := cmp.Diff(test.Params, params); diff != "" {
				t.Errorf("params mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseParamsErrors(t *testing.T) {
	for _, test := range []struct {
		Name     string
		Spec     string
		Operator bool
	}{
		{Name: "nameless", Spec: "'"},
		{Name: "nameless optional", Spec: "?"},
		{Name: "unknown type", Spec: "a:wat"},
		{Name: "variadic literal", Spec: "'rest..."},
		{Name: "operator without params", Spec: "", Operator: true},
	} {
		test := test
		t.Run(test.Name, func(t *testing.T) {
			is := is.New(t)

			_, err := loam.ParseParams(test.Name, test.Spec, test.Operator)
			is.True(err != nil)

			var spec loam.BadSpecError
			is.True(errors.As(err, &spec))
		})
	}
}
