// Package assistant is the public facade of the routing subsystem.
//
// An Assistant bundles the provider manager, the task router, the
// health monitor, the metrics collector and the optional SQLite health
// history behind one object with a small request surface: Chat,
// ChatStream, Vision, GenerateCode, ReviewCode, GetModels and the
// health accessors. Construction wires everything from configuration;
// Close tears it all down in reverse order.
//
// # Basic Usage
//
//	cfg := config.GetConfig()
//
//	a, err := assistant.New(ctx, cfg, logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer a.Close()
//
//	reply, err := a.Chat(ctx, "explain goroutines", nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(reply.Content)
//
// # Streaming
//
//	chunks, err := a.ChatStream(ctx, "write a haiku", nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for chunk := range chunks {
//	    fmt.Print(chunk.Content)
//	}
//
// # Custom Adapters
//
// Tests and embedders that bring their own adapters construct the
// manager first and hand it over:
//
//	manager := providerfactory.NewManager()
//	manager.Register(myProvider)
//
//	a, err := assistant.NewWithManager(ctx, cfg, manager, logger)
//
// All methods are safe for concurrent use. Requests issued after Close
// fail with ErrClosed.
package assistant
