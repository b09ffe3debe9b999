// Package piston is a client for the Piston code execution API.
//
// A request is built with the Executor value builder and sent with Client.Execute:
//
//	client := piston.New()
//	resp, err := client.Execute(ctx, piston.NewExecutor().
//		SetLanguage("python").
//		AddFile(piston.NewFile("main.py", `print("hi")`)))
//	if err != nil {
//		// the service could not be reached
//	}
//	fmt.Print(resp.Run.Output)
//
// Execute returns an error only when the exchange itself failed. A request the
// service rejected (400, 401, 429, ...) comes back as an ExecResponse with the
// status in Status and the service's message in Run.Stderr, so Run can always be
// inspected without a nil check.
package piston
