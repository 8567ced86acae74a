package timex

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTime_UnixMethods(t *testing.T) {
	// Create a fixed time
	// 创建一个固定时间
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	tt := Time(now)

	assert.Equal(t, now.Unix(), tt.Unix())
	assert.Equal(t, now.UnixMilli(), tt.UnixMilli())
	assert.Equal(t, now.UnixMicro(), tt.UnixMicro())
	assert.Equal(t, now.UnixNano(), tt.UnixNano())
}

func TestTime_JSONRoundTrip(t *testing.T) {
	now := time.Date(2024, 3, 15, 8, 30, 0, 0, time.Local)
	tt := Time(now)

	data, err := tt.MarshalJSON()
	assert.NoError(t, err)
	assert.Equal(t, `"2024-03-15 08:30:00"`, string(data))

	var back Time
	assert.NoError(t, back.UnmarshalJSON(data))
	assert.Equal(t, tt.Unix(), back.Unix())
}

func TestTime_ScanString(t *testing.T) {
	var tt Time
	assert.NoError(t, tt.Scan("2024-03-15 08:30:00"))
	assert.Equal(t, "2024-03-15 08:30:00", tt.String())

	assert.NoError(t, tt.Scan(nil))
	assert.True(t, tt.IsZero())
}
