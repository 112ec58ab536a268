package export_test

import (
	"os"

	"github.com/ulikoehler/slinktree/pkg/export"
	"github.com/ulikoehler/slinktree/pkg/model"
)

func ExampleWriteJSON() {
	doc := &model.SystemDoc{
		FormatVersion: model.CurrentFormatVersion,
		Source:        "root.xml",
		Root: &model.System{
			Properties: model.Properties{{Key: "Name", Value: "demo"}},
			Blocks: []*model.Block{{
				ID:    "1",
				Name:  "K",
				Type:  "Constant",
				Ports: []model.Port{{Kind: model.PortOut, Index: 1}},
			}},
		},
	}
	_ = export.WriteJSON(os.Stdout, doc)
	// Output:
	// {
	//   "format_version": 2,
	//   "source": "root.xml",
	//   "root": {
	//     "properties": {
	//       "Name": "demo"
	//     },
	//     "blocks": [
	//       {
	//         "id": "1",
	//         "name": "K",
	//         "type": "Constant",
	//         "ports": [
	//           {
	//             "kind": "out",
	//             "index": 1
	//           }
	//         ]
	//       }
	//     ]
	//   }
	// }
}
