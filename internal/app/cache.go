package app

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// artifacts are the files one upload leaves behind.
type artifacts struct {
	wav      string
	upload   string
	response []byte
	ok       bool
}

// cache keeps artifacts under dir when keep is set and removes them
// otherwise.
type cache struct {
	dir  string
	keep bool
	now  func() time.Time
	log  zerolog.Logger
}

func (c *cache) handle(a artifacts) {
	if !c.keep || c.dir == "" {
		for _, p := range []string{a.wav, a.upload} {
			if p != "" {
				_ = os.Remove(p)
			}
		}
		return
	}

	base := fmt.Sprintf("audio-%s", c.now().Format("2006-01-02-15.04.05"))
	seen := map[string]bool{}
	for _, p := range []string{a.wav, a.upload} {
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		dst := filepath.Join(c.dir, base+filepath.Ext(p))
		if err := os.Rename(p, dst); err != nil {
			c.log.Warn().Err(err).Str("dst", dst).Msg("failed to keep audio")
			_ = os.Remove(p)
		}
	}

	if a.ok && len(a.response) > 0 {
		jsonPath := filepath.Join(c.dir, base+".json")
		if err := os.WriteFile(jsonPath, a.response, 0o644); err != nil {
			c.log.Warn().Err(err).Str("path", jsonPath).Msg("failed to write response")
		}
	}
}
