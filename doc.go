// Package fugue provides the application orchestrator for a stream
// processing runtime. An App owns a set of named streams, drives their
// lifecycle as a unit, and lazily provisions a transport and producer for
// publishing events.
//
// Construction is cheap and performs no I/O:
//
//	app, err := fugue.New("orders",
//		fugue.WithURL("kafka://broker-1:9092,broker-2:9092"),
//	)
//
// Streams register before start and run in registration order:
//
//	app.AddSource(enricher)
//	app.AddSource(aggregator)
//	app.Start(ctx)
//	defer app.Stop(ctx)
//
// Publishing connects on demand; the first Send starts the producer:
//
//	err = app.Send(ctx, fugue.ToName("orders.created"), orderID, evt)
//
// Transport drivers register themselves by URL scheme. Importing
// transport/kafka enables kafka:// URLs; transport/memory provides an
// in-process broker for tests.
package fugue
