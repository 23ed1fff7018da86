package internal

import (
	"encoding/hex"
	"fmt"
	"time"
)

// Version is the current version of kaisetsu
const Version = "0.3.0"

// AudioFileName builds the media filename for a synthesized explanation
// clip. Format: explanation_audio_<hexPrefix(text)>_<epochSeconds>.<ext>
// The hex prefix keeps names stable per text while the timestamp keeps
// repeated generations from colliding.
func AudioFileName(text, ext string) string {
	h := hex.EncodeToString([]byte(text))
	if len(h) > 16 {
		h = h[:16]
	}
	return fmt.Sprintf("explanation_audio_%s_%d.%s", h, time.Now().Unix(), ext)
}
