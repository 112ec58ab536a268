package codec

import "google.golang.org/protobuf/encoding/protowire"

// Field numbers. Numbers are never reused; a new layout gets a new version.
const (
	docSource  protowire.Number = 1
	docSources protowire.Number = 2
	docRoot    protowire.Number = 3

	srcPath   protowire.Number = 1
	srcDigest protowire.Number = 2

	sysPath   protowire.Number = 1
	sysProps  protowire.Number = 2
	sysBlocks protowire.Number = 3
	sysLines  protowire.Number = 4

	propKey   protowire.Number = 1
	propValue protowire.Number = 2

	blkID     protowire.Number = 1
	blkName   protowire.Number = 2
	blkType   protowire.Number = 3
	blkTag    protowire.Number = 4
	blkProps  protowire.Number = 5
	blkPorts  protowire.Number = 6
	blkRef    protowire.Number = 7
	blkSystem protowire.Number = 8
	blkData   protowire.Number = 9  // since version 2
	blkMask   protowire.Number = 10 // since version 2

	maskName   protowire.Number = 1
	maskType   protowire.Number = 2
	maskPrompt protowire.Number = 3
	maskValue  protowire.Number = 4
	maskOption protowire.Number = 5

	portKind  protowire.Number = 1
	portIndex protowire.Number = 2
	portName  protowire.Number = 3
	portProps protowire.Number = 4

	refBlock protowire.Number = 1
	refKind  protowire.Number = 2
	refIndex protowire.Number = 3

	lineSource   protowire.Number = 1
	lineDsts     protowire.Number = 2
	lineBranches protowire.Number = 3
	lineProps    protowire.Number = 4

	brDst      protowire.Number = 1
	brProps    protowire.Number = 2
	brBranches protowire.Number = 3
)
