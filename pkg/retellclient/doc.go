// Package retellclient is the entry point for constructing a Retell voice-call
// API client that implements the retell.Client interface.
//
// Quick start
//
//	cli, err := retellclient.NewWithAPIKey(os.Getenv("RETELL_API_KEY"))
//	if err != nil { log.Fatal(err) }
//
//	res := cli.PhoneCalls().Create(ctx, &retell.CreatePhoneCallRequest{
//	  FromNumber: "+14157774444",
//	  ToNumber:   "+12137774445",
//	  Metadata:   map[string]interface{}{"customer_id": "c-42"},
//	})
//
//	call, err := res.Unwrap()
//	if err != nil {
//	  var p retell.Problem
//	  if errors.As(err, &p) {
//	    log.Printf("%s (%d)", p.ProblemDetails().Title, p.Status())
//	  }
//	  return
//	}
//	log.Println(call.String("call_id"))
//
// # Process-wide client
//
// Default, Configure and CreatePhoneCall share one client per process. It is
// configured from RETELL_* environment variables (RETELL_API_KEY,
// RETELL_TIMEOUT, RETELL_RETRY_MAX_ATTEMPTS and so on) the first time it is
// needed. Configure rotates its API key; the transport is rebuilt on the next
// call while calls already running finish on the old one.
//
// # Retries
//
// Only connection failures and timeouts are retried, up to
// Config.RetryMaxAttempts attempts in total. A response is never retried,
// whatever its status. Config.Timeout bounds each attempt on its own.
package retellclient
