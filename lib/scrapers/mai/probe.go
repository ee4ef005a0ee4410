package mai

import (
	"context"
	"fmt"
	"net/http/cookiejar"
	"time"

	"maischedule/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
)

func newProbeClient() *resty.Client {
	client := resty.New()
	jar, err := cookiejar.New(nil)
	if err == nil {
		client.SetCookieJar(jar)
	}
	// the schedule site sits behind bot protection; a plain GET gets
	// challenged while the browser sails through
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	client.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	client.SetTimeout(time.Second * 30)

	telemetry.InstrumentResty(client, "scrapers/mai/probe")
	return client
}

var probeClient = newProbeClient()

// Probe checks that the schedule site answers at all, so a down site
// fails fast instead of paying browser startup and a full round of
// navigation timeouts.
func Probe(ctx context.Context) error {
	res, err := probeClient.R().
		SetContext(ctx).
		Get(ScheduleUrl)
	if err != nil {
		return fmt.Errorf("schedule site unreachable: %w", err)
	}
	if res.IsError() {
		return fmt.Errorf("schedule site unreachable: status %d", res.StatusCode())
	}
	return nil
}
