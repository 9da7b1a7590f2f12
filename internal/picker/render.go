package picker

import (
	"fmt"
	"strings"

	"github.com/dgellow/openid-selector/internal/provider"
)

// Sprite geometry: large icons are 100px wide on the first row, small
// icons 24px wide on the row starting at y=60.
const (
	largeIconWidth = 100
	smallIconWidth = 24
	smallRowOffset = -60
)

// render rebuilds the button container from the provider tables
func (p *Picker) render() {
	p.doc.ChoiceVisible = true
	p.doc.InputArea = nil
	p.doc.Buttons = p.doc.Buttons[:0]

	largeSize := provider.SizeLarge
	if p.cfg.AllSmall {
		largeSize = provider.SizeSmall
	}

	index := 0
	add := func(e *provider.Entry, size provider.Size) {
		if p.cfg.wants(e.ID) {
			p.doc.Buttons = append(p.doc.Buttons, Button{Icon: p.icon(e, size, index)})
		}
		// filtered built-ins still occupy their slot on the sprite sheet
		if e.BuiltIn() {
			index++
		}
	}

	for i := range p.tables.Large {
		add(&p.tables.Large[i], largeSize)
	}
	if len(p.tables.Small) > 0 {
		p.doc.Buttons = append(p.doc.Buttons, Button{Break: true})
		for i := range p.tables.Small {
			add(&p.tables.Small[i], provider.SizeSmall)
		}
	}
}

func (p *Picker) icon(e *provider.Entry, size provider.Size, index int) Icon {
	return Icon{
		ProviderID: e.ID,
		Title:      strings.Replace(p.cfg.ImageTitle, "{provider}", e.Name, 1),
		Href:       p.href(e.ID),
		Style:      p.iconStyle(e, size, index),
		Class:      fmt.Sprintf("%s openid_%s_btn", e.ID, size),
		Size:       size,
	}
}

// iconStyle resolves the CSS background: explicit image, per-icon file,
// or an offset into the shared sprite
func (p *Picker) iconStyle(e *provider.Entry, size provider.Size, index int) string {
	img := e.Image
	if img == "" && p.cfg.NoSprite {
		ext := ".gif"
		if size == provider.SizeSmall {
			ext = ".ico.gif"
		}
		img = p.cfg.ImgPath + "../images." + string(size) + "/" + e.ID + ext
	}
	if img != "" {
		return "background: #fff url(" + img + ") no-repeat center center;"
	}

	x, y := SpriteOffset(size, index)
	sprite := p.cfg.ImgPath + "openid-providers-" + p.cfg.Sprite + ".png"
	return fmt.Sprintf("background: #FFF url(%s);background-position: %dpx %dpx", sprite, x, y)
}

// SpriteOffset returns the background position of the index-th built-in icon
func SpriteOffset(size provider.Size, index int) (x, y int) {
	if size == provider.SizeSmall {
		return -index * smallIconWidth, smallRowOffset
	}
	return -index * largeIconWidth, 0
}
