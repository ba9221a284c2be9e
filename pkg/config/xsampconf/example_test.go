package xsampconf_test

import (
	"context"
	"fmt"

	"github.com/omeyang/tracekit/pkg/config/xsampconf"
	"github.com/omeyang/tracekit/pkg/observability/xsampling"
)

func ExampleFromBytes() {
	sampler, err := xsampconf.FromBytes([]byte(`
strategy: composite
mode: or
samplers:
  - strategy: keybased
    rate: 0
    key:
      always: [checkout]
  - strategy: never
`), xsampconf.FormatYAML)
	if err != nil {
		fmt.Println("build failed:", err)
		return
	}

	d := sampler.ShouldSample(context.Background(), xsampling.NewSampleContext("checkout"))
	fmt.Println("checkout sampled:", d.Sampled())
	// Output:
	// checkout sampled: true
}

func ExampleNewDynamic() {
	dyn, _ := xsampconf.NewDynamic(xsampling.Never())

	sc := xsampling.NewSampleContext("op")
	fmt.Println("before:", dyn.ShouldSample(context.Background(), sc).Sampled())

	_ = dyn.Swap(xsampling.Always())
	fmt.Println("after:", dyn.ShouldSample(context.Background(), sc).Sampled())
	// Output:
	// before: false
	// after: true
}
