package spinor

// PageSize is the largest span of a single page program.
const PageSize = 256

const (
	cmdWriteStatus = 0x01
	cmdPageProgram = 0x02
	cmdRead        = 0x03
	cmdReadStatus  = 0x05
	cmdWriteEnable = 0x06
	cmdSectorErase = 0x20
	cmdJEDECID     = 0x9F

	statusWIP = 0x01
	statusWEL = 0x02
)

// Firmware status codes understood by espflash.
const (
	statusOK      int32 = 0
	statusIOErr   int32 = 1
	statusTimeout int32 = 2
)
