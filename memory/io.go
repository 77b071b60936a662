package memory

import (
	"encoding/binary"
	"fmt"
	"io"
	"runtime"

	"github.com/pkg/errors"
)

var endian = binary.LittleEndian

func check(err error) {
	if err != nil {
		panic(err)
	}
}

func readI32(r io.Reader) (v int32) {
	check(binary.Read(r, endian, &v))
	return
}

func writeI32(w io.Writer, v int32) {
	check(binary.Write(w, endian, v))
}

func readBytes(r io.Reader, n int) []byte {
	p := make([]byte, n)
	_, err := io.ReadFull(r, p)
	check(err)
	return p
}

func writeBytes(w io.Writer, p []byte) {
	_, err := w.Write(p)
	check(err)
}

func recoverOnPanic(err *error) {
	x := recover()
	if x == nil {
		return
	}

	switch tx := x.(type) {
	case runtime.Error:
		panic(tx)
	case error:
		*err = errors.Wrapf(tx, "snapshot")
	default:
		*err = fmt.Errorf("snapshot: %v", tx)
	}
}
