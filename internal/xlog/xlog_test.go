package xlog_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/crux-ms/xlink/internal/xlog"
	"github.com/stretchr/testify/assert"
)

func TestInfoWritesMessage(t *testing.T) {
	var buf bytes.Buffer
	lg := xlog.NewWriter(&buf)
	lg.Info("spectrum %d skipped: no peaks", 42)
	assert.True(t, strings.Contains(buf.String(), "spectrum 42 skipped: no peaks"))
}
