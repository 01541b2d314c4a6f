package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Configuration
	CfgInfo             Code = 1000
	CfgBadAddressRange  Code = 1001
	CfgNoOutputArtifact Code = 1002
	CfgExclusiveOutputs Code = 1003
	CfgEmptyNameFilter  Code = 1004

	// Decompilation (reserved block for provider-side failures)
	DecompInfo        Code = 2000
	DecompFailed      Code = 2001
	DecompNoFunctions Code = 2002
	DecompBadSnapshot Code = 2003

	// Closure
	ClosInfo             Code = 3000
	ClosOpaqueType       Code = 3001
	ClosOpaqueField      Code = 3002
	ClosGlobalConflict   Code = 3003
	ClosProtoConflict    Code = 3004
	ClosMissingSignature Code = 3005

	// Selection
	SelInfo        Code = 4000
	SelUnknownName Code = 4001
	SelEmptyResult Code = 4002
)

// String returns a short stable identifier like "CSL3003".
func (c Code) String() string {
	return fmt.Sprintf("CSL%04d", uint16(c))
}
