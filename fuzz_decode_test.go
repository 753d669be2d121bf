package goBindToken

import "testing"

func FuzzDecode(f *testing.F) {
	c := NewCodec(testConfig(), WithClock(fixedClock(testNow)))
	valid := c.Encode(agentA(), Claims{"uid": 42})

	f.Add(valid, "agentA", "10.0.0.1")
	f.Add(valid, "agentB", "10.0.0.1")
	f.Add("", "", "")
	f.Add("a.b.c", "agentA", "10.0.0.1")
	f.Add("eyJhbGciOiJub25lIn0.eyJ1aWQiOjF9.", "agentA", "::1")

	f.Fuzz(func(t *testing.T, token, ua, ip string) {
		cc := ClientContext{UserAgent: ua, IP: ip}
		got := c.Decode(cc, token)
		if got == nil {
			t.Fatal("Decode must never return nil claims")
		}
		if _, ok := got[ClaimAudience]; ok {
			t.Fatal("aud leaked to caller")
		}
		if _, ok := got[ClaimIssuedAt]; ok {
			t.Fatal("isa leaked to caller")
		}
		if len(got) == 0 {
			return
		}
		if ua+ip != "agentA10.0.0.1" {
			t.Fatalf("unexpected acceptance for ua=%q ip=%q", ua, ip)
		}
		if got["uid"] != int64(42) {
			t.Fatalf("unexpected claims %v", got)
		}
	})
}
