package irsdk

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// Layout of the iRacing SDK shared memory. All values are little endian.
const (
	headerSize    = 112
	varHeaderSize = 144
	maxBufs       = 4
	nameLen       = 32

	statusConnected = 1
)

// VarType is the element type of a telemetry variable.
type VarType int32

const (
	TypeChar VarType = iota
	TypeBool
	TypeInt
	TypeBitField
	TypeFloat
	TypeDouble
)

func (t VarType) size() int {
	switch t {
	case TypeChar, TypeBool:
		return 1
	case TypeDouble:
		return 8
	default:
		return 4
	}
}

type varBuf struct {
	TickCount int32
	BufOffset int32
	Pad       [2]int32
}

type header struct {
	Version           int32
	Status            int32
	TickRate          int32
	SessionInfoUpdate int32
	SessionInfoLen    int32
	SessionInfoOffset int32
	NumVars           int32
	VarHeaderOffset   int32
	NumBuf            int32
	BufLen            int32
	Pad               [2]int32
	VarBuf            [maxBufs]varBuf
}

type varHeader struct {
	Type        VarType
	Offset      int32
	Count       int32
	CountAsTime bool
	Pad         [3]byte
	Name        [nameLen]byte
	Desc        [64]byte
	Unit        [32]byte
}

type variable struct {
	Type   VarType
	Offset int
	Count  int
}

func parseHeader(b []byte) (header, error) {
	var h header
	if len(b) < headerSize {
		return h, fmt.Errorf("short header: %d bytes", len(b))
	}
	if err := binary.Read(bytes.NewReader(b[:headerSize]), binary.LittleEndian, &h); err != nil {
		return h, err
	}
	if h.NumBuf < 1 || h.NumBuf > maxBufs {
		return h, fmt.Errorf("invalid buffer count %d", h.NumBuf)
	}

	return h, nil
}

func (h header) connected() bool {
	return h.Status&statusConnected != 0
}

// extent is the number of bytes the header says are in use.
func (h header) extent() int {
	end := int(h.VarHeaderOffset) + int(h.NumVars)*varHeaderSize
	end = max(end, int(h.SessionInfoOffset)+int(h.SessionInfoLen))
	for _, vb := range h.VarBuf[:h.NumBuf] {
		end = max(end, int(vb.BufOffset)+int(h.BufLen))
	}

	return max(end, headerSize)
}

// latest returns the index of the buffer holding the newest tick.
func (h header) latest() int {
	idx := 0
	for i := 1; i < int(h.NumBuf); i++ {
		if h.VarBuf[i].TickCount > h.VarBuf[idx].TickCount {
			idx = i
		}
	}

	return idx
}

func parseVars(b []byte, h header) (map[string]variable, error) {
	start := int(h.VarHeaderOffset)
	end := start + int(h.NumVars)*varHeaderSize
	if start < 0 || end > len(b) {
		return nil, fmt.Errorf("variable headers out of range: %d..%d of %d", start, end, len(b))
	}

	vars := make(map[string]variable, h.NumVars)
	r := bytes.NewReader(b[start:end])
	for i := 0; i < int(h.NumVars); i++ {
		var vh varHeader
		if err := binary.Read(r, binary.LittleEndian, &vh); err != nil {
			return nil, err
		}
		name := string(bytes.TrimRight(vh.Name[:], "\x00"))
		vars[name] = variable{Type: vh.Type, Offset: int(vh.Offset), Count: int(vh.Count)}
	}

	return vars, nil
}

// frame is a copy of one variable buffer.
type frame struct {
	vars map[string]variable
	data []byte
}

// Float returns the first element of a numeric or boolean variable.
func (f frame) Float(name string) (float64, bool) {
	v, ok := f.vars[name]
	if !ok || v.Count < 1 || v.Offset < 0 || v.Offset+v.Type.size() > len(f.data) {
		return 0, false
	}

	b := f.data[v.Offset:]
	switch v.Type {
	case TypeFloat:
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(b))), true
	case TypeDouble:
		return math.Float64frombits(binary.LittleEndian.Uint64(b)), true
	case TypeInt, TypeBitField:
		return float64(int32(binary.LittleEndian.Uint32(b))), true
	case TypeBool:
		if b[0] != 0 {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}
