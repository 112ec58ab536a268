package resolver_test

import (
	"context"
	"fmt"
	"testing/fstest"

	"github.com/ulikoehler/slinktree/pkg/resolver"
	"github.com/ulikoehler/slinktree/pkg/source"
)

func ExampleResolver_Resolve() {
	fsys := fstest.MapFS{
		"plant.xml": {Data: []byte(`<System>
  <Block BlockType="SubSystem" Name="Ctrl" SID="1"><System Ref="ctrl"/></Block>
</System>`)},
		"ctrl.xml": {Data: []byte(`<System>
  <Block BlockType="Gain" Name="K" SID="1"/>
</System>`)},
	}

	doc, err := resolver.New(source.FromFS(fsys), resolver.Options{}).Resolve(context.Background(), "plant.xml")
	if err != nil {
		fmt.Println(err)
		return
	}
	for _, sf := range doc.Sources {
		fmt.Println(sf.Path)
	}
	fmt.Println(doc.Root.Lookup("Ctrl").BlockNamed("K").Type)
	// Output:
	// ctrl.xml
	// plant.xml
	// Gain
}

func ExampleCanonical() {
	fmt.Println(resolver.Canonical("models/plant.xml", "ctrl"))
	fmt.Println(resolver.Canonical("models/plant.xml", "../lib/gain.xml"))
	fmt.Println(resolver.Canonical("models/plant.xml", "/shared/bus.xml"))
	fmt.Println(resolver.Canonical("models/plant.xml", "filter.mdl"))
	// Output:
	// models/ctrl.xml
	// lib/gain.xml
	// shared/bus.xml
	// models/filter.xml
}
