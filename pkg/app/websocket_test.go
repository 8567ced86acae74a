package app

import (
	"testing"

	"github.com/bytedance/sonic"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeWSFrame(t *testing.T) {
	frame, err := EncodeWSFrame("PageSyncModify", map[string]string{"id": "p1"})
	require.NoError(t, err)
	assert.Equal(t, `PageSyncModify|{"id":"p1"}`, string(frame))
}

func TestEncodeWSFrameNoAction(t *testing.T) {
	// 无 action 时只发送裸 JSON
	frame, err := EncodeWSFrame("", map[string]int{"count": 3})
	require.NoError(t, err)
	assert.Equal(t, `{"count":3}`, string(frame))
}

func TestDecodeWSFrame(t *testing.T) {
	msg := DecodeWSFrame([]byte(`PageSync|{"since":0}`))
	assert.Equal(t, "PageSync", msg.Action)
	assert.Equal(t, `{"since":0}`, string(msg.Data))
}

func TestDecodeWSFramePayloadWithSeparator(t *testing.T) {
	// 载荷内的 "|" 不影响拆帧，只按第一个分隔符切分
	msg := DecodeWSFrame([]byte(`PageSyncModify|{"title":"a|b"}`))
	assert.Equal(t, "PageSyncModify", msg.Action)
	assert.Equal(t, `{"title":"a|b"}`, string(msg.Data))
}

func TestDecodeWSFrameNoSeparator(t *testing.T) {
	msg := DecodeWSFrame([]byte(`{"raw":true}`))
	assert.Equal(t, "", msg.Action)
	assert.Equal(t, `{"raw":true}`, string(msg.Data))
}

// 编码后再解码应还原 action 与载荷

func TestPropertyWSFrameRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("decode(encode(action, payload)) preserves both parts", prop.ForAll(
		func(action string, title string, count int) bool {
			payload := map[string]interface{}{"title": title, "count": count}

			frame, err := EncodeWSFrame(action, payload)
			if err != nil {
				return false
			}

			msg := DecodeWSFrame(frame)
			if msg.Action != action {
				return false
			}

			var decoded struct {
				Title string `json:"title"`
				Count int    `json:"count"`
			}
			if err := sonic.Unmarshal(msg.Data, &decoded); err != nil {
				return false
			}
			return decoded.Title == title && decoded.Count == count
		},
		gen.RegexMatch(`[A-Za-z][A-Za-z0-9]{0,20}`),
		gen.AnyString(),
		gen.Int(),
	))

	properties.TestingRun(t)
}
