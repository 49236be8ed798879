package gpu

// vertex is a screen-space draw point with its own color and (for textured
// primitives) texture coordinates, used by the flat/gouraud/textured
// polygon rasterizer and the line rasterizer.
type vertex struct {
	x, y    int
	r, g, b uint8
	u, v    uint8
}

// textureRef binds a textured polygon to the texture page and CLUT parsed
// from its own texcoord words, overriding the GPU's ambient draw-mode
// texture page for the lifetime of this one primitive -- real hardware
// reads the page/CLUT out of the command stream itself, not out of
// persistent state, so two textured polygons in the same frame can sample
// from entirely different pages.
type textureRef struct {
	active       bool
	raw          bool
	clut         uint32
	pageX, pageY int
	colorMode    int // 0=4bpp, 1=8bpp, 2=15bpp direct
}

// drawPolygon handles the 0x20-0x3F opcode family: 3 or 4 vertices, flat or
// gouraud shaded, opaque or semi-transparent, textured or untextured. The
// quad/gouraud/textured bits sit at 0x08/0x10/0x04 respectively; the first
// textured vertex's texcoord word carries the CLUT location in its upper
// half, and the second carries the texture page (color depth, page X/Y).
func (g *GPU) drawPolygon(cmd uint32, words []uint32) {
	isQuad := cmd&0x08 != 0
	gouraud := cmd&0x10 != 0
	textured := cmd&0x04 != 0 && !g.draw.TexturingDisabled
	rawTexture := cmd&0x01 != 0
	semiTransparent := cmd&0x02 != 0

	n := 3
	if isQuad {
		n = 4
	}
	verts := make([]vertex, 0, n)
	idx := 0
	baseColor := words[0] & 0xFFFFFF
	r0, g0, b0 := uint8(baseColor), uint8(baseColor>>8), uint8(baseColor>>16)
	idx++

	var clut uint32
	pageX, pageY, colorMode := g.draw.TexPageX, g.draw.TexPageY, g.draw.TexPageColors

	for i := 0; i < n; i++ {
		vr, vg, vb := r0, g0, b0
		if gouraud && i > 0 {
			c := words[idx] & 0xFFFFFF
			vr, vg, vb = uint8(c), uint8(c>>8), uint8(c>>16)
			idx++
		}
		xy := words[idx]
		idx++
		var u, v uint8
		if cmd&0x04 != 0 { // parse texcoord words even if texturing is globally disabled, to stay in sync
			uv := words[idx]
			idx++
			u, v = uint8(uv), uint8(uv>>8)
			switch i {
			case 0:
				clut = (uv >> 16) & 0xFFFF
			case 1:
				page := (uv >> 16) & 0xFFFF
				pageX = int(page&0xF) * 64
				pageY = int((page>>4)&1) * 256
				colorMode = int((page >> 7) & 3)
			}
		}
		verts = append(verts, vertex{
			x: g.draw.DrawOffsetX + int(int16(xy&0xFFFF)),
			y: g.draw.DrawOffsetY + int(int16(xy>>16)),
			r: vr, g: vg, b: vb,
			u: u, v: v,
		})
	}

	var tex textureRef
	if textured {
		tex = textureRef{active: true, raw: rawTexture, clut: clut, pageX: pageX, pageY: pageY, colorMode: colorMode}
	}

	g.fillTriangle(verts[0], verts[1], verts[2], semiTransparent, tex)
	if isQuad {
		g.fillTriangle(verts[1], verts[2], verts[3], semiTransparent, tex)
	}
}

func (g *GPU) drawRectangle(cmd uint32, words []uint32) {
	semiTransparent := cmd&0x02 != 0
	textured := cmd&0x04 != 0
	color := words[0] & 0xFFFFFF
	idx := 1
	xy := words[idx]
	idx++
	x := g.draw.DrawOffsetX + int(int16(xy&0xFFFF))
	y := g.draw.DrawOffsetY + int(int16(xy>>16))

	if textured {
		idx++ // texcoord+clut word: rectangle texture sampling isn't implemented, only consumed to keep the FIFO in sync
	}

	var w, h int
	switch (cmd >> 3) & 3 {
	case 1:
		w, h = 1, 1
	case 2:
		w, h = 8, 8
	case 3:
		w, h = 16, 16
	default:
		size := words[idx]
		w = int(size & 0xFFFF)
		h = int((size >> 16) & 0xFFFF)
	}

	c16 := to555(color)
	for row := 0; row < h; row++ {
		for col := 0; col < w; col++ {
			g.plot(x+col, y+row, c16, semiTransparent)
		}
	}
}

// fillTriangle rasterizes using a plain edge-function scan, integer-only,
// with per-pixel gouraud interpolation via barycentric weights. When tex is
// active, the same barycentric weights interpolate U/V instead of (or in
// addition to) color, and each pixel is a texel sampled from VRAM rather
// than the interpolated color directly.
func (g *GPU) fillTriangle(a, b, c vertex, semiTransparent bool, tex textureRef) {
	minX, maxX := clampRange(min3(a.x, b.x, c.x), max3(a.x, b.x, c.x), g.draw.DrawAreaLeft, g.draw.DrawAreaRight)
	minY, maxY := clampRange(min3(a.y, b.y, c.y), max3(a.y, b.y, c.y), g.draw.DrawAreaTop, g.draw.DrawAreaBottom)

	area := edge(a, b, c)
	if area == 0 {
		return
	}
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			p := vertex{x: x, y: y}
			w0 := edge(b, c, p)
			w1 := edge(c, a, p)
			w2 := edge(a, b, p)
			if area < 0 {
				if w0 > 0 || w1 > 0 || w2 > 0 {
					continue
				}
			} else {
				if w0 < 0 || w1 < 0 || w2 < 0 {
					continue
				}
			}

			r := interp(a.r, b.r, c.r, w0, w1, w2, area)
			gch := interp(a.g, b.g, c.g, w0, w1, w2, area)
			bch := interp(a.b, b.b, c.b, w0, w1, w2, area)

			var c16 uint16
			if tex.active {
				u := interp(a.u, b.u, c.u, w0, w1, w2, area)
				v := interp(a.v, b.v, c.v, w0, w1, w2, area)
				texel, transparent := g.sampleTexture(tex, u, v)
				if transparent {
					continue
				}
				if tex.raw {
					c16 = texel
				} else {
					c16 = modulate(texel, r, gch, bch)
				}
			} else {
				c16 = uint16(r>>3) | uint16(gch>>3)<<5 | uint16(bch>>3)<<10
			}
			g.plot(x, y, c16, semiTransparent)
		}
	}
}

// texCoordWindow applies the GP0(E2h) texture-window wrap/mask to a raw
// texture coordinate: masked-out bits are replaced by the corresponding
// bits of offset, exactly as GP0(E2h)'s documented formula describes.
func (g *GPU) texCoordWindow(u, v uint8) (uint8, uint8) {
	mx := g.draw.TexWindowMaskX * 8
	ox := (g.draw.TexWindowOffsetX & g.draw.TexWindowMaskX) * 8
	my := g.draw.TexWindowMaskY * 8
	oy := (g.draw.TexWindowOffsetY & g.draw.TexWindowMaskY) * 8
	wu := (uint32(u) &^ mx) | ox
	wv := (uint32(v) &^ my) | oy
	return uint8(wu), uint8(wv)
}

// sampleTexture looks up one texel at (u,v) within tex's bound page,
// applying the texture window and the CLUT indirection for 4bpp/8bpp
// pages. It reports whether the texel is the all-zero-bits value hardware
// treats as a punch-through (fully transparent, drawn as nothing at all,
// distinct from semi-transparency blending).
func (g *GPU) sampleTexture(tex textureRef, u, v uint8) (uint16, bool) {
	wu, wv := g.texCoordWindow(u, v)
	clutX := int(tex.clut&0x3F) * 16
	clutY := int((tex.clut >> 6) & 0x1FF)

	switch tex.colorMode {
	case 0: // 4bpp indexed: 4 texels per VRAM halfword
		vramX := tex.pageX + int(wu)/4
		shift := (uint(wu) % 4) * 4
		raw := g.VRAMRead(vramX, tex.pageY+int(wv))
		idx := (raw >> shift) & 0xF
		px := g.VRAMRead(clutX+int(idx), clutY)
		return px, px == 0
	case 1: // 8bpp indexed: 2 texels per VRAM halfword
		vramX := tex.pageX + int(wu)/2
		shift := (uint(wu) % 2) * 8
		raw := g.VRAMRead(vramX, tex.pageY+int(wv))
		idx := (raw >> shift) & 0xFF
		px := g.VRAMRead(clutX+int(idx), clutY)
		return px, px == 0
	default: // 15bpp direct color, no CLUT indirection
		px := g.VRAMRead(tex.pageX+int(wu), tex.pageY+int(wv))
		return px, px == 0
	}
}

// modulate blends a sampled 5-bit-per-channel texel against an 8-bit
// gouraud/flat vertex color, the same tex*color/128 formula real hardware
// uses (128 standing in for the vertex color's "1.0x brightness" point),
// preserving the texel's own semi-transparency bit.
func modulate(texel uint16, vr, vg, vb uint8) uint16 {
	tr, tg, tb := channels(texel)
	r := clamp5(tr * int(vr) / 128)
	gch := clamp5(tg * int(vg) / 128)
	b := clamp5(tb * int(vb) / 128)
	return packChannels(r, gch, b) | (texel & 0x8000)
}

// plot writes a single pixel, applying the configured semi-transparency
// blend mode against the existing VRAM contents when requested -- mode 0
// averages new and old pixel values; modes 1-3 add, subtract, or add a
// quarter (see blend).
func (g *GPU) plot(x, y int, c16 uint16, semiTransparent bool) {
	if x < 0 || y < 0 || x >= VRAMWidth || y >= VRAMHeight {
		return
	}
	if g.draw.CheckMaskBit && g.VRAMRead(x, y)&0x8000 != 0 {
		return
	}
	out := c16
	if semiTransparent {
		out = blend(g.draw.SemiTransparencyMode, g.VRAMRead(x, y), c16)
	}
	if g.draw.ForceMaskBit {
		out |= 0x8000
	}
	g.VRAMWrite(x, y, out)
}

func blend(mode int, back, front uint16) uint16 {
	br, bg, bb := channels(back)
	fr, fg, fb := channels(front)
	var r, gch, b int
	switch mode {
	case 0: // B/2 + F/2
		r, gch, b = (br+fr)/2, (bg+fg)/2, (bb+fb)/2
	case 1: // B + F
		r, gch, b = br+fr, bg+fg, bb+fb
	case 2: // B - F
		r, gch, b = br-fr, bg-fg, bb-fb
	case 3: // B + F/4
		r, gch, b = br+fr/4, bg+fg/4, bb+fb/4
	}
	return packChannels(clamp5(r), clamp5(gch), clamp5(b))
}

func channels(px uint16) (int, int, int) {
	return int(px & 0x1F), int((px >> 5) & 0x1F), int((px >> 10) & 0x1F)
}

func packChannels(r, g, b int) uint16 {
	return uint16(r) | uint16(g)<<5 | uint16(b)<<10
}

func clamp5(v int) int {
	if v < 0 {
		return 0
	}
	if v > 31 {
		return 31
	}
	return v
}

func interp(va, vb, vc uint8, w0, w1, w2, area int) uint8 {
	v := (int(va)*w0 + int(vb)*w1 + int(vc)*w2) / area
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

func edge(a, b, p vertex) int {
	return (b.x-a.x)*(p.y-a.y) - (b.y-a.y)*(p.x-a.x)
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

func max3(a, b, c int) int {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	return m
}

func clampRange(lo, hi, boundLo, boundHi int) (int, int) {
	if lo < boundLo {
		lo = boundLo
	}
	if hi > boundHi {
		hi = boundHi
	}
	return lo, hi
}

// drawLine rasterizes a single line segment with Bresenham's algorithm,
// linearly interpolating the endpoint colors by step index for gouraud
// lines (flat lines simply carry the same color at both ends already).
func (g *GPU) drawLine(a, b vertex, semiTransparent bool) {
	dx := absInt(b.x - a.x)
	dy := -absInt(b.y - a.y)
	sx, sy := 1, 1
	if a.x > b.x {
		sx = -1
	}
	if a.y > b.y {
		sy = -1
	}
	err := dx + dy
	steps := dx
	if -dy > steps {
		steps = -dy
	}
	if steps == 0 {
		steps = 1
	}

	x, y := a.x, a.y
	for i := 0; ; i++ {
		t := i
		if t > steps {
			t = steps
		}
		r := lerp8(a.r, b.r, t, steps)
		gch := lerp8(a.g, b.g, t, steps)
		bch := lerp8(a.b, b.b, t, steps)
		c16 := uint16(r>>3) | uint16(gch>>3)<<5 | uint16(bch>>3)<<10
		g.plot(x, y, c16, semiTransparent)

		if x == b.x && y == b.y {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
	}
}

func lerp8(a, b uint8, t, steps int) uint8 {
	if steps == 0 {
		return a
	}
	return uint8(int(a) + (int(b)-int(a))*t/steps)
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
