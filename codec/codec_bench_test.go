package codec_test

import (
	"testing"

	"github.com/hupe1980/cmem/codec"
	"github.com/hupe1980/cmem/codec/fpc"
	"github.com/hupe1980/cmem/codec/fpzip"
	"github.com/hupe1980/cmem/codec/lossless"
	"github.com/hupe1980/cmem/codec/raw"
	"github.com/hupe1980/cmem/codec/zfp"
	"github.com/hupe1980/cmem/testutil"
)

const benchValues = 4096

type benchCodec struct {
	name string
	new  func() (codec.Codec, error)
}

func benchCodecs() []benchCodec {
	return []benchCodec{
		{"none", func() (codec.Codec, error) { return raw.New(), nil }},
		{"zfp-rate32", func() (codec.Codec, error) { return zfp.New(zfp.Config{Mode: zfp.ModeRate, Rate: 32}) }},
		{"zfp-accuracy", func() (codec.Codec, error) {
			return zfp.New(zfp.Config{Mode: zfp.ModeAccuracy, Tolerance: 1e-9})
		}},
		{"zfp-reversible", func() (codec.Codec, error) { return zfp.New(zfp.Config{Mode: zfp.ModeReversible}) }},
		{"fpzip", func() (codec.Codec, error) { return fpzip.New(fpzip.Config{Precision: 64}) }},
		{"fpc", func() (codec.Codec, error) { return fpc.New(fpc.Config{Level: 16}) }},
		{"fpc-level24", func() (codec.Codec, error) { return fpc.New(fpc.Config{Level: 24}) }},
		{"lz4", func() (codec.Codec, error) {
			return lossless.New(lossless.Config{Algorithm: lossless.LZ4, Shuffle: true})
		}},
		{"zstd", func() (codec.Codec, error) {
			return lossless.New(lossless.Config{Algorithm: lossless.Zstd, Shuffle: true})
		}},
		{"s2", func() (codec.Codec, error) {
			return lossless.New(lossless.Config{Algorithm: lossless.S2, Shuffle: true})
		}},
	}
}

func benchInputs() map[string][]float64 {
	rng := testutil.NewRNG(42)
	return map[string][]float64{
		"smooth":     rng.Smooth(benchValues),
		"amplitudes": rng.Amplitudes(benchValues),
	}
}

func BenchmarkCodec_Compress(b *testing.B) {
	inputs := benchInputs()
	for _, bc := range benchCodecs() {
		for name, src := range inputs {
			b.Run(bc.name+"/"+name, func(b *testing.B) {
				c, err := bc.new()
				if err != nil {
					b.Fatal(err)
				}
				dst := make([]byte, c.MaxSize(len(src)))

				n, err := c.Compress(dst, src)
				if err != nil {
					b.Fatal(err)
				}
				b.ReportMetric(float64(len(src)*codec.BytesPerValue)/float64(max(n, 1)), "ratio")
				b.SetBytes(int64(len(src) * codec.BytesPerValue))
				b.ReportAllocs()

				b.ResetTimer()
				for b.Loop() {
					if _, err := c.Compress(dst, src); err != nil {
						b.Fatal(err)
					}
				}
			})
		}
	}
}

func BenchmarkCodec_Decompress(b *testing.B) {
	inputs := benchInputs()
	for _, bc := range benchCodecs() {
		for name, src := range inputs {
			b.Run(bc.name+"/"+name, func(b *testing.B) {
				c, err := bc.new()
				if err != nil {
					b.Fatal(err)
				}
				buf := make([]byte, c.MaxSize(len(src)))
				n, err := c.Compress(buf, src)
				if err != nil {
					b.Fatal(err)
				}
				data := buf[:n]
				out := make([]float64, len(src))
				b.SetBytes(int64(len(src) * codec.BytesPerValue))
				b.ReportAllocs()

				b.ResetTimer()
				for b.Loop() {
					if err := c.Decompress(out, data); err != nil {
						b.Fatal(err)
					}
				}
			})
		}
	}
}
