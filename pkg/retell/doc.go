// Package retell defines the public types of the Retell voice-call API client:
// the Result type every operation returns, the problem taxonomy used to report
// failures, and the interceptor chain that shapes requests and responses.
//
// Operations never return a bare error. A call yields a Result that is either a
// Success carrying a value or a Failure carrying a Problem. Problems form a
// closed set and each one renders as RFC 9457 problem details:
//
//	res := client.PhoneCalls().Create(ctx, &retell.CreatePhoneCallRequest{
//	  FromNumber: "+14157774444",
//	  ToNumber:   "+12137774445",
//	})
//
//	res.Match(
//	  func(tag retell.Tag, doc retell.Document) {
//	    fmt.Println("call", doc.String("call_id"))
//	  },
//	  func(tag retell.Tag, p retell.Problem) {
//	    switch e := p.(type) {
//	    case *retell.PhoneNumberError:
//	      fmt.Println("bad", e.Param)
//	    case *retell.APIError:
//	      fmt.Println("remote status", e.StatusCode)
//	    default:
//	      fmt.Println(p.ProblemDetails().Title)
//	    }
//	  },
//	)
//
// # Response shaping
//
// Response bodies pass through two stages before an operation sees them. Key
// normalization rewrites JSON object keys from the wire's camelCase to
// snake_case and decodes the body into a Document. It runs inside an error
// boundary registered ahead of it: if normalization or any later stage fails,
// the response is replaced with an application/problem+json document
// describing the failure.
//
// Use pkg/retellclient to construct a Client.
package retell
