package espflash

// fakeROM is a scripted ROM: every routine returns its configured status and
// records its arguments.
type fakeROM struct {
	idByte byte

	readRC, writeRC, eraseRC int32
	unlockRCs                []int32 // consumed in order; 0 once exhausted

	reads, writes, erases, unlocks int
	lastOffset                     uint32
	lastLen                        int
	lastSector                     uint32
}

func (f *fakeROM) Read(offset uint32, dst []byte) int32 {
	f.reads++
	f.lastOffset, f.lastLen = offset, len(dst)
	if f.readRC != 0 {
		return f.readRC
	}
	for i := range dst {
		dst[i] = 0xA5
	}
	if offset == IDAddress && len(dst) > idDensityByte {
		dst[idDensityByte] = f.idByte
	}
	return 0
}

func (f *fakeROM) Write(offset uint32, src []byte) int32 {
	f.writes++
	f.lastOffset, f.lastLen = offset, len(src)
	return f.writeRC
}

func (f *fakeROM) EraseSector(sector uint32) int32 {
	f.erases++
	f.lastSector = sector
	return f.eraseRC
}

func (f *fakeROM) Unlock() int32 {
	f.unlocks++
	if len(f.unlockRCs) == 0 {
		return 0
	}
	rc := f.unlockRCs[0]
	f.unlockRCs = f.unlockRCs[1:]
	return rc
}

// withCapacity returns a device whose detection has been bypassed.
func withCapacity(rom *fakeROM, capacity uint32) *FlashStorage {
	return &FlashStorage{rom: rom, capacity: capacity}
}
