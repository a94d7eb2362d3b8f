// Package deepdub provides a Go client for the Deepdub speech API.
//
// The client exposes three surfaces:
//
//  1. REST endpoints for one-shot calls and asset management
//     (client.TTS, client.Voice, and the generic Get/Post/Put/Delete verbs).
//  2. A multiplexed WebSocket mode where several TTS generations and
//     gender-classification calls share one connection, demultiplexed by
//     generation ID (client.Connect).
//  3. A streaming WebSocket mode carrying a single ordered stream with
//     incremental text input and incremental audio output
//     (client.ConnectStream).
//
// # Quick start
//
// Create a client (reads DEEPDUB_API_KEY when no key is supplied):
//
//	client, err := deepdub.NewClient(deepdub.WithAPIKey(apiKey))
//
// One-shot synthesis over REST:
//
//	audio, err := client.TTS.Synthesize(ctx, &deepdub.TTSRequest{
//	    Text:          "Hello, world!",
//	    VoicePromptID: promptID,
//	})
//
// Multiplexed synthesis over WebSocket:
//
//	conn, err := client.Connect(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer conn.Close()
//
//	gen, err := conn.Synthesize(ctx, &deepdub.SynthesizeRequest{
//	    Text:          "Hello, world!",
//	    VoicePromptID: promptID,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for chunk, err := range gen.Chunks(ctx) {
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    // process chunk
//	}
//
// Streaming synthesis:
//
//	stream, err := client.ConnectStream(ctx, &deepdub.StreamConfig{
//	    Model:         deepdub.ModelETTS30,
//	    Locale:        "en-US",
//	    VoicePromptID: promptID,
//	    Format:        deepdub.FormatS16LE,
//	    SampleRate:    16000,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer stream.Close()
//
//	stream.SendText(ctx, "Hello. ")
//	stream.SendText(ctx, "World!")
//	for chunk, err := range stream.Chunks(ctx, 2*time.Second) {
//	    // chunks stop without error once the stream goes idle
//	}
//
// # Error handling
//
// All errors produced by this package can be converted to *Error:
//
//	if e, ok := deepdub.AsError(err); ok {
//	    if e.IsContractViolation() {
//	        // request never reached the network
//	    }
//	}
package deepdub
