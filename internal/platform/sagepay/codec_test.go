package sagepay

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const registeredReply = "VPSProtocol=3.00\r\n" +
	"Status=OK\r\n" +
	"StatusDetail=2014 : The Transaction was Registered Successfully.\r\n" +
	"VPSTxId={1A960910-5F36-3421-24DE-65EF52C13380}\r\n" +
	"SecurityKey=U5NX3V0WG9\r\n" +
	"NextURL=https://test.sagepay.com/gateway/service/cardselection?vpstxid={1A960910-5F36-3421-24DE-65EF52C13380}\r\n"

const invalidReply = "VPSProtocol=3.00\r\n" +
	"Status=INVALID\r\n" +
	"StatusDetail=3011 : The NotificationURL format is invalid.\r\n"

func TestDecode_RegisteredReply(t *testing.T) {
	f, err := Decode(registeredReply)
	require.NoError(t, err)
	require.Equal(t, "3.00", f.Get(FieldVPSProtocol))
	require.Equal(t, "OK", f.Get(FieldStatus))
	require.Equal(t, "2014 : The Transaction was Registered Successfully.", f.Get(FieldStatusDetail))
	require.Equal(t, "{1A960910-5F36-3421-24DE-65EF52C13380}", f.Get(FieldVPSTxID))
	require.Equal(t, "U5NX3V0WG9", f.Get(FieldSecurityKey))
	require.Equal(t, "https://test.sagepay.com/gateway/service/cardselection?vpstxid={1A960910-5F36-3421-24DE-65EF52C13380}", f.Get(FieldNextURL))
	require.Equal(t, "", f.Get("Missing"))
}

func TestDecode_KeepsEverythingAfterFirstEquals(t *testing.T) {
	f, err := Decode("NextURL=https://x/y?a=1&b=2\nStatus=OK")
	require.NoError(t, err)
	require.Equal(t, "https://x/y?a=1&b=2", f.Get(FieldNextURL))
	require.Equal(t, "OK", f.Get(FieldStatus))
}

func TestDecode_BareLineFeedsAndBlankLines(t *testing.T) {
	f, err := Decode("\nStatus=OK\n\n  StatusDetail = spaced  \n")
	require.NoError(t, err)
	require.Len(t, f, 2)
	require.Equal(t, "spaced", f.Get(FieldStatusDetail))
}

func TestDecode_EmptyValue(t *testing.T) {
	f, err := Decode("Status=OK\r\nTxAuthNo=\r\n")
	require.NoError(t, err)
	v, ok := f[FieldTxAuthNo]
	require.True(t, ok)
	require.Equal(t, "", v)
}

func TestDecode_Malformed(t *testing.T) {
	for _, raw := range []string{"Status=OK\r\ngarbage\r\n", "=novalue", "<html>oops</html>"} {
		_, err := Decode(raw)
		require.ErrorIs(t, err, ErrMalformedResponse, raw)
	}
}

func TestEncode_RoundTrip(t *testing.T) {
	in := Fields{
		FieldStatus:       "OK",
		FieldStatusDetail: "0000 : done",
		FieldNextURL:      "https://x/y?a=b=c",
	}
	order := []string{FieldStatus, FieldStatusDetail, FieldNextURL}

	raw := Encode(in, order)
	require.Equal(t, "Status=OK\r\nStatusDetail=0000 : done\r\nNextURL=https://x/y?a=b=c\r\n", raw)

	out, err := Decode(raw)
	require.NoError(t, err)
	require.Equal(t, in, out)
}

func TestEncode_SkipsAbsentKeys(t *testing.T) {
	raw := Encode(Fields{FieldStatus: "OK"}, []string{FieldVPSProtocol, FieldStatus})
	require.Equal(t, "Status=OK\r\n", raw)
}
