package notify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/presswatch/presswatch/internal/shared/types"
)

func TestNewMailerValidation(t *testing.T) {
	_, err := NewMailer(Config{}, nil)
	assert.Error(t, err)

	_, err = NewMailer(Config{Host: "smtp.gmail.com", Sender: "a@example.com"}, nil)
	assert.Error(t, err) // no recipients

	m, err := NewMailer(Config{
		Host:       "smtp.gmail.com",
		Sender:     "a@example.com",
		Recipients: []string{"b@example.com"},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 465, m.cfg.Port)
	assert.NotEmpty(t, m.cfg.Subject)
}

func TestSendReleasesEmptyIsNoop(t *testing.T) {
	m, err := NewMailer(Config{
		Host:       "smtp.invalid",
		Sender:     "a@example.com",
		Recipients: []string{"b@example.com"},
	}, nil)
	require.NoError(t, err)

	// No releases: nothing to send, no dial attempted.
	assert.NoError(t, m.SendReleases(context.Background(), nil))
}

func TestFormatDigest(t *testing.T) {
	body := FormatDigest([]types.PressRelease{
		{
			Title:       "国务院关于促进经济发展的意见",
			PublishDate: "2025-08-20",
			DocNumber:   "国发〔2025〕12号",
			URL:         "https://www.gov.cn/a",
			Content:     "为进一步促进经济发展，现提出以下意见。",
		},
		{
			Title:       "中共中央办公厅印发通知",
			PublishDate: "2025-08-19",
			URL:         "https://www.gov.cn/b",
		},
	})

	assert.Contains(t, body, "2 new press release(s)")
	assert.Contains(t, body, "国发〔2025〕12号")
	assert.Contains(t, body, "https://www.gov.cn/a")
	// Second release has no document number; its line is omitted.
	assert.Contains(t, body, "中共中央办公厅印发通知")
}

func TestFormatDigestTruncatesContent(t *testing.T) {
	long := make([]rune, 500)
	for i := range long {
		long[i] = '文'
	}

	body := FormatDigest([]types.PressRelease{{
		Title:       "t",
		PublishDate: "2025-08-20",
		URL:         "https://www.gov.cn/a",
		Content:     string(long),
	}})
	assert.Contains(t, body, "...")
}
