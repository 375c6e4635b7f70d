package header

// Axis names an instrument drive.
type Axis string

const (
	Omega    Axis = "OMEGA"
	TwoTheta Axis = "TWOTHETA"
	Khi      Axis = "KHI"
	Phi      Axis = "PHI"
	X        Axis = "X"
	Y        Axis = "Y"
	Z        Axis = "Z"
	Aux1     Axis = "AUX1"
	Aux2     Axis = "AUX2"
	Aux3     Axis = "AUX3"
)

// Drive is an entry of the stepping-drive table.
type Drive struct {
	Code     uint32
	ScanMode string
	Axis     Axis
}

// Stepping-drive codes with special handling.
const (
	DriveRockingCurve uint32 = 3
	DriveAux1         uint32 = 9
	DriveAux2         uint32 = 10
	DriveAux3         uint32 = 11
	DriveHKL          uint32 = 13
	DrivePSDFixed     uint32 = 129
	DrivePSDFast      uint32 = 130
)

var drives = map[uint32]Drive{
	0:             {0, "locked coupled", TwoTheta},
	1:             {1, "unlocked coupled", TwoTheta},
	2:             {2, "detector scan", TwoTheta},
	3:             {3, "rocking curve", Omega},
	4:             {4, "khi scan", Khi},
	5:             {5, "phi scan", Phi},
	6:             {6, "x-scan", X},
	7:             {7, "y-scan", Y},
	8:             {8, "z-scan", Z},
	DriveAux1:     {DriveAux1, "aux1 scan", Aux1},
	DriveAux2:     {DriveAux2, "aux2 scan", Aux2},
	DriveAux3:     {DriveAux3, "aux3 scan", Aux3},
	12:            {12, "psi scan", TwoTheta},
	DriveHKL:      {DriveHKL, "hkl scan", TwoTheta},
	DrivePSDFixed: {DrivePSDFixed, "psd fixed scan", TwoTheta},
	DrivePSDFast:  {DrivePSDFast, "psd fast scan", TwoTheta},
}

// DriveFor looks up a stepping-drive code.
func DriveFor(code uint32) (Drive, bool) {
	d, ok := drives[code]
	return d, ok
}

// IsAuxDrive reports whether code steps one of the auxiliary axes.
func IsAuxDrive(code uint32) bool {
	return code == DriveAux1 || code == DriveAux2 || code == DriveAux3
}

// IsPSDDrive reports whether code is a position-sensitive detector scan.
func IsPSDDrive(code uint32) bool {
	return code == DrivePSDFixed || code == DrivePSDFast
}
