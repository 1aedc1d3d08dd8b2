package projection_test

import (
	"fmt"

	"github.com/matzehuels/tephi/pkg/projection"
	"github.com/matzehuels/tephi/pkg/thermo"
)

func ExampleByName() {
	p, err := projection.ByName("skewt", projection.Params{Skew: 35})
	if err != nil {
		fmt.Println("Error:", err)
		return
	}

	pt := p.Forward(thermo.State{Pressure: 1000, Temperature: 15})
	back := p.Inverse(pt)

	fmt.Println(p.Name())
	fmt.Printf("x=%.1f y=%.1f\n", pt.X, pt.Y)
	fmt.Printf("p=%.1f T=%.1f\n", back.Pressure, back.Temperature)
	// Output:
	// skew-logp
	// x=15.0 y=0.0
	// p=1000.0 T=15.0
}

func ExampleCompose() {
	base, _ := projection.NewSkewLogP(35, 1000)
	_, err := projection.Compose(base, projection.Scale(0, 1))
	fmt.Println(err)
	// Output: INVALID_TRANSFORM: skew-logp: composed matrix is singular
}
