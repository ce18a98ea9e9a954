package witness

// SuccinctPobList is a shared-dictionary encoding of a batch of PoBs: every
// distinct mpt-node and code blob across the whole batch is interned once,
// and each PoB references its set by index instead of repeating the bytes.
// This is the wire form `da_putPob` accepts. This module's
// `prover_genContext` returns an error and produces no list.
type SuccinctPobList struct {
	Blocks []BlockHeaderLite
	Datas  []succinctData
	Dict   [][]byte // interned mpt-node and code blobs, in first-seen order
}

type succinctData struct {
	ChainID           uint64
	Coinbase          [20]byte
	PrevStateRoot     [32]byte
	BlockHashes       [][32]byte
	MptNodeRefs       []uint32
	CodeRefs          []uint32
	StartL1QueueIndex uint64
	WithdrawalRoot    [32]byte
}

type interner struct {
	index map[string]uint32
	dict  [][]byte
}

func newInterner() *interner {
	return &interner{index: make(map[string]uint32)}
}

func (in *interner) intern(b []byte) uint32 {
	key := string(b)
	if idx, ok := in.index[key]; ok {
		return idx
	}
	idx := uint32(len(in.dict))
	in.index[key] = idx
	in.dict = append(in.dict, append([]byte(nil), b...))
	return idx
}

// BuildSuccinctPobList deduplicates the mpt-node and code bytes shared
// across pobs into a single dictionary.
func BuildSuccinctPobList(pobs []PoB) SuccinctPobList {
	in := newInterner()
	list := SuccinctPobList{
		Blocks: make([]BlockHeaderLite, len(pobs)),
		Datas:  make([]succinctData, len(pobs)),
	}
	for i, p := range pobs {
		list.Blocks[i] = p.Block
		sd := succinctData{
			ChainID:           p.Data.ChainID,
			Coinbase:          p.Data.Coinbase,
			PrevStateRoot:     p.Data.PrevStateRoot,
			StartL1QueueIndex: p.Data.StartL1QueueIndex,
			WithdrawalRoot:    p.Data.WithdrawalRoot,
		}
		for _, h := range p.Data.BlockHashes {
			sd.BlockHashes = append(sd.BlockHashes, h)
		}
		for _, n := range p.Data.MptNodes {
			sd.MptNodeRefs = append(sd.MptNodeRefs, in.intern(n))
		}
		for _, c := range p.Data.Codes {
			sd.CodeRefs = append(sd.CodeRefs, in.intern(c))
		}
		list.Datas[i] = sd
	}
	list.Dict = in.dict
	return list
}

// Expand reconstructs the original PoB list by resolving dictionary
// references, recomputing each PoB's canonical hash.
func (l SuccinctPobList) Expand() []PoB {
	out := make([]PoB, len(l.Blocks))
	for i := range l.Blocks {
		sd := l.Datas[i]
		d := Data{
			ChainID:           sd.ChainID,
			Coinbase:          sd.Coinbase,
			PrevStateRoot:     sd.PrevStateRoot,
			StartL1QueueIndex: sd.StartL1QueueIndex,
			WithdrawalRoot:    sd.WithdrawalRoot,
		}
		for _, h := range sd.BlockHashes {
			d.BlockHashes = append(d.BlockHashes, h)
		}
		for _, ref := range sd.MptNodeRefs {
			d.MptNodes = append(d.MptNodes, l.Dict[ref])
		}
		for _, ref := range sd.CodeRefs {
			d.Codes = append(d.Codes, l.Dict[ref])
		}
		out[i] = New(l.Blocks[i], d)
	}
	return out
}
