// Package echo implements a feedback echo processor for plugin-style hosts.
//
// A Processor owns one delay line per channel, the two user parameters
// (delay length and feedback gain) and an output gate. On construction it
// runs a self-test over its own clamping and delay arithmetic; if any
// check fails the gate closes for good and every processed block is
// silent. The host reports the sample rate with OnSampleRateChanged,
// calls ProcessBlock once per audio block and Release when playback stops.
//
// The processor holds no locks. A host that changes parameters from a
// control thread must serialize those calls with ProcessBlock.
package echo
