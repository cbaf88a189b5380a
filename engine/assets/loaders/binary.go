package loaders

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/spaghettifunk/mandelbrot/engine/core"
)

// SPIRVMagic is the first word of every SPIR-V module.
const SPIRVMagic uint32 = 0x07230203

// BinaryLoader reads compiled SPIR-V modules.
type BinaryLoader struct{}

func (bl *BinaryLoader) Load(path string, name string) (*Resource, error) {
	f, err := os.Open(path)
	if err != nil {
		err = fmt.Errorf("failed to open shader '%s': %v: %w", path, err, core.ErrShaderLoad)
		core.LogError(err.Error())
		return nil, err
	}
	defer f.Close()

	buf, err := io.ReadAll(f)
	if err != nil {
		err = fmt.Errorf("failed to read shader '%s': %v: %w", path, err, core.ErrShaderLoad)
		core.LogError(err.Error())
		return nil, err
	}

	code, err := DecodeSPIRV(buf)
	if err != nil {
		core.LogError("shader '%s': %s", path, err)
		return nil, err
	}

	return &Resource{
		Name:     name,
		FullPath: path,
		DataSize: uint64(len(buf)),
		Data:     code,
	}, nil
}

func (bl *BinaryLoader) Unload(*Resource) error {
	return nil
}

/**
 * @brief Converts a SPIR-V file into words. The module must be a whole number
 * of little-endian words and start with the magic number.
 */
func DecodeSPIRV(b []byte) ([]uint32, error) {
	if len(b) == 0 || len(b)%4 != 0 {
		return nil, fmt.Errorf("SPIR-V size %d is not a positive multiple of 4: %w", len(b), core.ErrShaderLoad)
	}
	code := bytesToBytecode(b)
	if code[0] != SPIRVMagic {
		return nil, fmt.Errorf("bad SPIR-V magic 0x%08x: %w", code[0], core.ErrShaderLoad)
	}
	return code, nil
}

func bytesToBytecode(b []byte) []uint32 {
	byteCode := make([]uint32, len(b)/4)
	for i := range byteCode {
		byteCode[i] = binary.LittleEndian.Uint32(b[i*4:])
	}
	return byteCode
}
