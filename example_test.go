package tether_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/tether"
	"github.com/aretw0/tether/pkg/domain"
)

// ExampleHost_RegisterFunc shows an in-process command next to the built-in one.
func ExampleHost_RegisterFunc() {
	host, err := tether.New()
	if err != nil {
		log.Fatal(err)
	}

	err = host.RegisterFunc(domain.Descriptor{Name: "greet", Description: "Say hello"},
		func(ctx context.Context) (*domain.Result, error) {
			return &domain.Result{Output: "hello from Go"}, nil
		})
	if err != nil {
		log.Fatal(err)
	}

	for _, c := range host.Commands() {
		fmt.Printf("%s (%s)\n", c.Name, c.Kind)
	}

	res, err := host.Invoke(context.Background(), "greet")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(res.Output)
	// Output:
	// greet (func)
	// run_python (process)
	// hello from Go
}
