package isopleth_test

import (
	"fmt"

	"github.com/matzehuels/tephi/pkg/isopleth"
)

func ExampleGenerator_Generate() {
	g, err := isopleth.NewGenerator(isopleth.DefaultDomain(), isopleth.Options{Samples: 5})
	if err != nil {
		fmt.Println("Error:", err)
		return
	}

	iso, err := g.Generate(isopleth.Request{Family: isopleth.Isotherm, Level: -10})
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	for _, s := range iso.Points {
		fmt.Printf("%.0f hPa %.0f °C\n", s.Pressure, s.Temperature)
	}
	// Output:
	// 50 hPa -10 °C
	// 300 hPa -10 °C
	// 550 hPa -10 °C
	// 800 hPa -10 °C
	// 1050 hPa -10 °C
}

func ExampleNewDomain() {
	_, err := isopleth.NewDomain(1050, 50, -90, 70)
	fmt.Println(err)
	// Output: INVALID_DOMAIN: min pressure 1050 must be below max pressure 50
}

func ExampleGenerator_MixingRatio() {
	d, _ := isopleth.NewDomain(50, 1000, 50, 100)
	g, _ := isopleth.NewGenerator(d, isopleth.Options{})

	iso, err := g.MixingRatio(80)
	fmt.Println(iso.Len(), err)
	// Output: 0 <nil>
}
