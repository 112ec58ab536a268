package codec_test

import (
	"fmt"

	"github.com/ulikoehler/slinktree/pkg/codec"
	"github.com/ulikoehler/slinktree/pkg/model"
)

func ExampleEncode() {
	doc := &model.SystemDoc{
		FormatVersion: model.CurrentFormatVersion,
		Source:        "plant.xml",
		Root: &model.System{
			Path:   "plant.xml",
			Blocks: []*model.Block{{ID: "1", Name: "K", Type: "Constant"}},
		},
	}

	data, err := codec.Encode(doc)
	if err != nil {
		fmt.Println(err)
		return
	}
	v, _ := codec.Version(data)
	fmt.Printf("%s v%d\n", data[:4], v)

	back, err := codec.Decode(data)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(back.Equal(doc))
	// Output:
	// SLTB v1
	// true
}
