// Package fahlink provides a client that mirrors the live state of a remote
// Folding@home client into a local, queryable document, and relays user
// commands back to it over one persistent WebSocket.
//
// The client applies both full snapshots and field-level incremental
// patches to the mirrored document, recovers from disconnects with bounded
// exponential backoff, and delivers commands with opportunistic
// reconnect-then-send semantics. During outages the document keeps the last
// known good state.
//
// Example usage:
//
//	cfg := fahlink.DefaultConfig()
//	cfg.Host = "192.168.1.20"
//
//	client, err := fahlink.New(cfg, fahlink.WithLogger(logger))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := client.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Stop()
//
//	cancel := client.Subscribe(func(doc fahlink.Value) {
//	    fmt.Println("PPD:", fahlink.TotalPPD(doc))
//	})
//	defer cancel()
//
//	_ = client.Pause(ctx, fahlink.DefaultGroup)
package fahlink
