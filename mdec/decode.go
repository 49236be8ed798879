package mdec

// decodeBlockCoefficients implements run-length expansion of the compressed
// DCT coefficient stream: each 16-bit code packs a 6-bit run length and a
// 10-bit signed level, terminated by the 0xFE00 end-of-block marker, the
// same scheme JPEG/MPEG1 baseline decoders use for AC coefficients.
func decodeBlockCoefficients(words []uint16, quant []uint8) [blockSize]int32 {
	var coeffs [blockSize]int32
	if len(words) == 0 {
		return coeffs
	}
	// First word is the DC coefficient packed as (quant-scale<<10 | DC).
	dc := int32(int16(words[0] << 6 >> 6))
	coeffs[0] = dc * int32(quant[0])

	pos := 1
	idx := 1
	for pos < len(words) {
		w := words[pos]
		pos++
		if w == 0xFE00 {
			break
		}
		run := int(w >> 10)
		level := int32(int16(w<<6)) >> 6
		idx += run
		if idx >= blockSize {
			break
		}
		coeffs[zigzag[idx]] = level * int32(quant[idx])
		idx++
	}
	return coeffs
}

// zigzag is the standard 8x8 zigzag scan order used to place run-length
// decoded coefficients back into natural matrix order.
var zigzag = [blockSize]int{
	0, 1, 8, 16, 9, 2, 3, 10,
	17, 24, 32, 25, 18, 11, 4, 5,
	12, 19, 26, 33, 40, 48, 41, 34,
	27, 20, 13, 6, 7, 14, 21, 28,
	35, 42, 49, 56, 57, 50, 43, 36,
	29, 22, 15, 23, 30, 37, 44, 51,
	58, 59, 52, 45, 38, 31, 39, 46,
	53, 60, 61, 54, 47, 55, 62, 63,
}

// idct2D runs a separable row/column inverse DCT over one 8x8 coefficient
// block using the loaded cosine table, producing spatial-domain samples.
func (m *MDEC) idct2D(coeffs [blockSize]int32) [blockSize]int32 {
	var tmp, out [blockSize]int32
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			var sum int64
			for u := 0; u < 8; u++ {
				sum += int64(coeffs[u*8+x]) * int64(m.idctTable[u*8+y])
			}
			tmp[y*8+x] = int32(sum >> 13)
		}
	}
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			var sum int64
			for u := 0; u < 8; u++ {
				sum += int64(tmp[y*8+u]) * int64(m.idctTable[u*8+x])
			}
			out[y*8+x] = int32(sum >> 13)
		}
	}
	return out
}

// tryDecodeMacroblock waits for a full macroblock's worth of run-length
// data (6 blocks: Cr, Cb, Y1-Y4) then decodes, IDCTs, and converts YCbCr
// to RGB, pushing the result to OutputSink.
func (m *MDEC) tryDecodeMacroblock() {
	if m.wordsRemaining > 0 && len(m.inFIFO) < m.wordsRemaining {
		return
	}
	blocks := splitBlocks(m.inFIFO)
	if len(blocks) < 6 {
		return
	}
	var planes [6][blockSize]int32
	for i, blk := range blocks[:6] {
		quant := m.lumaQuant[:]
		if i < 2 {
			quant = m.chromaQuant[:]
		}
		coeffs := decodeBlockCoefficients(blk, quant)
		planes[i] = m.idct2D(coeffs)
	}
	rgb := m.yCbCrToRGB(planes)
	if m.OutputSink != nil {
		m.OutputSink(rgb, 16, 16)
	}
	m.inFIFO = m.inFIFO[:0]
}

// splitBlocks slices the flat run-length stream into per-block segments at
// each 0xFE00 terminator.
func splitBlocks(words []uint16) [][]uint16 {
	var blocks [][]uint16
	start := 0
	for i, w := range words {
		if w == 0xFE00 {
			blocks = append(blocks, words[start:i+1])
			start = i + 1
		}
	}
	return blocks
}

// yCbCrToRGB upsamples the 8x8 chroma planes to 16x16 and combines with
// the four 8x8 luma blocks using the standard BT.601 matrix, packing each
// pixel as 3 bytes (R, G, B) whatever the configured output depth.
func (m *MDEC) yCbCrToRGB(planes [6][blockSize]int32) []byte {
	cr, cb := planes[0], planes[1]
	y := [4][blockSize]int32{planes[2], planes[3], planes[4], planes[5]}

	out := make([]byte, 0, 16*16*3)
	for by := 0; by < 2; by++ {
		for bx := 0; bx < 2; bx++ {
			luma := y[by*2+bx]
			for py := 0; py < 8; py++ {
				for px := 0; px < 8; px++ {
					cy := luma[py*8+px]
					chromaIdx := ((by*8+py)/2)*8 + (bx*8+px)/2
					r, g, b := combine(cy, cr[chromaIdx], cb[chromaIdx])
					out = append(out, r, g, b)
				}
			}
		}
	}
	return out
}

func combine(y, cr, cb int32) (byte, byte, byte) {
	r := clampByte(y + (91881*cr)>>16)
	g := clampByte(y - (22554*cb)>>16 - (46802*cr)>>16)
	b := clampByte(y + (116130*cb)>>16)
	return r, g, b
}

func clampByte(v int32) byte {
	v += 128
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}
