package wasmdecoder

import (
	"strconv"

	"github.com/wippyai/wasm-decoder/errors"
	"github.com/wippyai/wasm-decoder/wasm"
)

// Decode frames data, resolves every section and decodes every function body.
// A nil cfg means wasm.DefaultConfig. The first failure is returned.
func Decode(data []byte, cfg *wasm.Config) (*wasm.Module, error) {
	m, err := wasm.DecodeWithConfig(data, cfg)
	if err != nil {
		return nil, err
	}
	if err := m.ResolveSections(); err != nil {
		return nil, err
	}
	for i := range m.Code {
		f, err := m.ResolveCode(i)
		if err != nil {
			return nil, err
		}
		if _, err := f.Decode(); err != nil {
			return nil, errors.Within(err, wasm.SectionCode.String(), strconv.Itoa(i))
		}
	}
	return m, nil
}
