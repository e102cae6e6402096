package entity

// RawFile is an upload as received from the intake: name, declared size and bytes.
type RawFile struct {
	Name string
	Size int64
	Data []byte
}

// EffectiveSize prefers the declared size and falls back to the byte count.
func (f RawFile) EffectiveSize() int64 {
	if f.Size > 0 {
		return f.Size
	}
	return int64(len(f.Data))
}
