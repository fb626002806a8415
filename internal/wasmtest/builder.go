// Package wasmtest assembles small Wasm modules for engine tests, so that the host
// can be exercised without a Wasm toolchain.
package wasmtest

const (
	valI32 byte = 0x7f
	valI64 byte = 0x7e

	exportFunc   byte = 0x00
	exportMemory byte = 0x02
)

// opcodes
const (
	opUnreachable byte = 0x00
	opLoop        byte = 0x03
	opIf          byte = 0x04
	opEnd         byte = 0x0b
	opBr          byte = 0x0c
	opCall        byte = 0x10
	opLocalGet    byte = 0x20
	opI64Load     byte = 0x29
	opI64Store    byte = 0x37
	opI32Const    byte = 0x41
	opI64Const    byte = 0x42
	opI64Ne       byte = 0x52
	blockEmpty    byte = 0x40
)

// builder collects the sections of a module with a single memory.
type builder struct {
	types    [][]byte
	imports  [][]byte
	nImports uint32
	funcs    []uint32
	bodies   [][]byte
	exports  [][]byte
	pages    uint32
	dataAddr uint32
	data     []byte
}

func (b *builder) addType(params, results []byte) uint32 {
	t := []byte{0x60}
	t = appendUleb(t, uint64(len(params)))
	t = append(t, params...)
	t = appendUleb(t, uint64(len(results)))
	t = append(t, results...)
	b.types = append(b.types, t)
	return uint32(len(b.types) - 1)
}

// importFunc must be called before any defineFunc.
func (b *builder) importFunc(module, name string, typeIdx uint32) uint32 {
	imp := appendName(nil, module)
	imp = appendName(imp, name)
	imp = append(imp, 0x00)
	imp = appendUleb(imp, uint64(typeIdx))
	b.imports = append(b.imports, imp)
	b.nImports++
	return b.nImports - 1
}

// defineFunc adds a function without locals. code must not contain the final end.
func (b *builder) defineFunc(typeIdx uint32, code []byte) uint32 {
	b.funcs = append(b.funcs, typeIdx)
	body := []byte{0x00} // no locals
	body = append(body, code...)
	body = append(body, opEnd)
	b.bodies = append(b.bodies, body)
	return b.nImports + uint32(len(b.funcs)) - 1
}

func (b *builder) export(name string, kind byte, idx uint32) {
	e := appendName(nil, name)
	e = append(e, kind)
	e = appendUleb(e, uint64(idx))
	b.exports = append(b.exports, e)
}

func (b *builder) bytes() []byte {
	out := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}
	out = appendSection(out, 1, appendVec(nil, b.types))
	if len(b.imports) > 0 {
		out = appendSection(out, 2, appendVec(nil, b.imports))
	}
	if len(b.funcs) > 0 {
		funcs := appendUleb(nil, uint64(len(b.funcs)))
		for _, idx := range b.funcs {
			funcs = appendUleb(funcs, uint64(idx))
		}
		out = appendSection(out, 3, funcs)
	}
	mem := appendUleb(nil, 1)
	mem = append(mem, 0x00)
	mem = appendUleb(mem, uint64(b.pages))
	out = appendSection(out, 5, mem)
	out = appendSection(out, 7, appendVec(nil, b.exports))
	if len(b.bodies) > 0 {
		code := appendUleb(nil, uint64(len(b.bodies)))
		for _, body := range b.bodies {
			code = appendUleb(code, uint64(len(body)))
			code = append(code, body...)
		}
		out = appendSection(out, 10, code)
	}
	if len(b.data) > 0 {
		seg := []byte{0x00, opI32Const}
		seg = appendSleb(seg, int64(b.dataAddr))
		seg = append(seg, opEnd)
		seg = appendUleb(seg, uint64(len(b.data)))
		seg = append(seg, b.data...)
		out = appendSection(out, 11, appendVec(nil, [][]byte{seg}))
	}
	return out
}

func appendSection(out []byte, id byte, payload []byte) []byte {
	out = append(out, id)
	out = appendUleb(out, uint64(len(payload)))
	return append(out, payload...)
}

func appendVec(out []byte, items [][]byte) []byte {
	out = appendUleb(out, uint64(len(items)))
	for _, item := range items {
		out = append(out, item...)
	}
	return out
}

func appendName(out []byte, s string) []byte {
	out = appendUleb(out, uint64(len(s)))
	return append(out, s...)
}

func appendUleb(out []byte, v uint64) []byte {
	for {
		c := byte(v & 0x7f)
		v >>= 7
		if v == 0 {
			return append(out, c)
		}
		out = append(out, c|0x80)
	}
}

func appendSleb(out []byte, v int64) []byte {
	for {
		c := byte(v & 0x7f)
		v >>= 7
		if (v == 0 && c&0x40 == 0) || (v == -1 && c&0x40 != 0) {
			return append(out, c)
		}
		out = append(out, c|0x80)
	}
}
