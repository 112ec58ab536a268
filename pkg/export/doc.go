// Package export reads and writes resolved models as JSON.
//
// # Format
//
// The document mirrors the model tree. Properties are JSON objects whose
// keys keep the order they had in the source files, and port references
// use the endpoint notation of the model files:
//
//	{
//	  "format_version": 1,
//	  "source": "root.xml",
//	  "sources": [{"path": "root.xml", "digest": "af13..."}],
//	  "root": {
//	    "path": "root.xml",
//	    "properties": {"Name": "plant"},
//	    "blocks": [
//	      {"id": "2", "name": "K", "type": "Constant",
//	       "ports": [{"kind": "out", "index": 1}]}
//	    ],
//	    "lines": [{"src": "2#out:1", "dst": ["1#in:1"]}]
//	  }
//	}
//
// Empty fields are omitted. [ReadJSON] accepts everything [WriteJSON]
// produces, so export and re-import round-trips a document exactly.
package export
