package validator

import (
	"testing"

	"github.com/gabriel-vasile/mimetype"
	"github.com/stretchr/testify/assert"
)

func TestValidatorKeepsFirstMessage(t *testing.T) {
	v := New()
	v.Check(false, "title", "must be provided")
	v.Check(false, "title", "must not be more than 255 bytes long")
	v.Check(true, "cover", "must be hard or soft")

	assert.False(t, v.Valid())
	assert.Equal(t, map[string]string{"title": "must be provided"}, v.Errors)
}

func TestIn(t *testing.T) {
	assert.True(t, In("hard", "hard", "soft"))
	assert.False(t, In("paper", "hard", "soft"))
	assert.True(t, In(3, 1, 2, 3))
}

func TestUnique(t *testing.T) {
	assert.True(t, Unique([]int64{1, 2, 3}))
	assert.False(t, Unique([]int64{1, 2, 1}))
	assert.True(t, Unique([]string{}))
}

func TestMatchesEmail(t *testing.T) {
	assert.True(t, Matches("reader@library.test", EmailRX))
	assert.False(t, Matches("not-an-email", EmailRX))
}

func TestMime(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	mtype := mimetype.Detect(png)
	assert.True(t, Mime(mtype, "image/jpeg", "image/png"))
	assert.False(t, Mime(mtype, "application/pdf"))
}
