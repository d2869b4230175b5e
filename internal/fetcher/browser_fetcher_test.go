package fetcher

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/aleister1102/feedwatch/internal/common"
	"github.com/aleister1102/feedwatch/internal/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaitSelectorError_TimeoutIsNetworkError(t *testing.T) {
	err := waitSelectorError("https://example.com", "#app", fmt.Errorf("rod: %w", context.DeadlineExceeded))

	var netErr *common.NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, "https://example.com", netErr.URL)
	assert.Contains(t, netErr.Reason, `"#app"`)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWaitSelectorError_OtherErrorsStayHard(t *testing.T) {
	cause := errors.New("invalid selector")
	err := waitSelectorError("https://example.com", "#app[", cause)

	var netErr *common.NetworkError
	assert.False(t, errors.As(err, &netErr))
	assert.ErrorIs(t, err, cause)
}

func TestNewBrowserFetcher_CloseWithoutLaunch(t *testing.T) {
	bf := NewBrowserFetcher(config.NewDefaultBrowserConfig(), zerolog.Nop())
	assert.NoError(t, bf.Close())
}
