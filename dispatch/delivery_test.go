package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	RECIPIENT  = "a@b.com"
	RECIPIENT2 = "123456"
	KEY_ACCT1  = "email_primary"
	KEY_ACCT2  = "email_secondary"
)

func TestDeliveryInfo_RoundTrip(t *testing.T) {
	filesSent := true
	info := DeliveryInfo{
		RECIPIENT: {
			KEY_ACCT1: {Success: true, Delivered: true, From: "sender@x.com", MessageId: "abc"},
			KEY_ACCT2: {Error: "connection refused", From: "other@x.com"},
		},
		RECIPIENT2: {
			TELEGRAM: {Success: true, Delivered: true, FilesSent: &filesSent},
		},
	}

	serialized, err := info.Serialize()
	require.NoError(t, err)

	restored := ParseDeliveryInfo(serialized)
	require.Equal(t, info, restored)
}

func TestParseDeliveryInfo_Blank(t *testing.T) {
	assert.Empty(t, ParseDeliveryInfo(""))
	assert.Empty(t, ParseDeliveryInfo("not a json"))
}

func TestDeliveryInfo_MergeIdempotent(t *testing.T) {
	info := DeliveryInfo{
		RECIPIENT: {KEY_ACCT1: {Success: true, Delivered: true}},
	}
	expected := DeliveryInfo{
		RECIPIENT: {KEY_ACCT1: {Success: true, Delivered: true}},
	}

	info.Merge(info)

	assert.Equal(t, expected, info)
}

func TestDeliveryInfo_MergeOverlaysSameKey(t *testing.T) {
	info := DeliveryInfo{
		RECIPIENT: {KEY_ACCT1: {Error: "timeout"}},
	}

	info.MergeRecords(RECIPIENT, map[string]DeliveryRecord{
		KEY_ACCT1: {Success: true, Delivered: true},
	})

	assert.True(t, info[RECIPIENT][KEY_ACCT1].Success)
}

func TestDeliveryInfo_MergeKeepsOtherKeys(t *testing.T) {
	//chat already succeeded, a later failed vk attempt must not erase it
	info := DeliveryInfo{
		RECIPIENT2: {TELEGRAM: {Success: true, Delivered: true}},
	}

	info.MergeRecords(RECIPIENT2, map[string]DeliveryRecord{
		VK: {Error: "user not found"},
	})

	assert.True(t, info[RECIPIENT2][TELEGRAM].Success)
	assert.False(t, info[RECIPIENT2][VK].Success)
	assert.Len(t, info[RECIPIENT2], 2)
}

func TestDeliveryInfo_MergeEmptyRecords(t *testing.T) {
	info := DeliveryInfo{}

	info.MergeRecords(RECIPIENT, nil)

	require.Contains(t, info, RECIPIENT)
	assert.Empty(t, info[RECIPIENT])
}

func TestDeliveryInfo_HasSuccess(t *testing.T) {
	info := DeliveryInfo{
		RECIPIENT:  {KEY_ACCT1: {Success: true}, KEY_ACCT2: {Error: "fail"}},
		RECIPIENT2: {TELEGRAM: {Error: "fail"}},
	}

	assert.True(t, info.HasSuccess(KEY_ACCT1))
	assert.False(t, info.HasSuccess(KEY_ACCT2))
	assert.False(t, info.HasSuccess(TELEGRAM))
	assert.False(t, info.HasSuccess(VK))
}

func TestAnySuccess(t *testing.T) {
	assert.False(t, AnySuccess(nil))
	assert.False(t, AnySuccess([]Result{{Recipient: RECIPIENT}}))
	assert.True(t, AnySuccess([]Result{{Recipient: RECIPIENT}, {Recipient: RECIPIENT2, Success: true}}))
}
