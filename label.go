package main

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/callebjorkell/musicbox/card"
	"github.com/callebjorkell/musicbox/config"
	"github.com/fogleman/gg"
	"github.com/nfnt/resize"
	log "github.com/sirupsen/logrus"
)

// label size of 50x81.6mm (85.60 mm × 53.98 with 2mm margin on each side) at 600 DPI
// = 1181 x 1928 pix
const (
	labelHeight = 1928
	labelWidth  = 1181
	artSize     = 900
)

var fontFile = "/usr/share/fonts/truetype/msttcorefonts/Comic_Sans_MS_Bold.ttf"

func createLabel() {
	cfg, err := config.Load(*labelConf)
	if err != nil {
		log.Fatal(err)
	}
	library, err := cfg.Library()
	if err != nil {
		log.Fatal(err)
	}

	id, err := card.ParseID(*labelCard)
	if err != nil {
		log.Fatal(err)
	}
	track, ok := library.Lookup(id)
	if !ok {
		log.Fatalf("Card %v has no track mapped", id)
	}

	out, err := os.Create(*labelOut)
	if err != nil {
		log.Fatal(err)
	}
	defer out.Close()

	if err := renderLabel(track, id, *labelArt, out); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Wrote label for %v to %v\n", id, *labelOut)
}

func renderLabel(track card.Track, id card.ID, artPath string, out *os.File) error {
	l := gg.NewContext(labelWidth, labelHeight)
	l.SetRGB(1, 1, 1)
	l.Fill()

	if artPath != "" {
		art, err := loadArt(artPath)
		if err != nil {
			return fmt.Errorf("could not load label art: %v", err.Error())
		}
		scaled := resize.Resize(artSize, 0, art, resize.Lanczos3)
		origin := labelWidth / 2
		l.DrawImageAnchored(scaled, origin, origin, 0.5, 0.5)
	}

	name := strings.TrimSuffix(filepath.Base(track.Path), filepath.Ext(track.Path))
	l.SetRGB(0, 0, 0)
	if err := renderString(l, strings.ToUpper(name), 112, 1300); err != nil {
		return err
	}
	l.SetRGB(0.4, 0.4, 0.4)
	if err := renderString(l, id.String(), 72, 1550); err != nil {
		return err
	}

	if err := l.EncodePNG(out); err != nil {
		return fmt.Errorf("could not render PNG: %v", err.Error())
	}
	return nil
}

func renderString(c *gg.Context, s string, size, y float64) error {
	if err := c.LoadFontFace(fontFile, size); err != nil {
		return fmt.Errorf("could not load the font: %v", err.Error())
	}
	lines := c.WordWrap(s, labelWidth-(labelWidth/10))
	for i, line := range lines {
		c.DrawStringAnchored(line, float64(labelWidth/2), y+float64(i)*size*1.2, 0.5, 0.5)
	}
	return nil
}

func loadArt(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	return img, err
}
