// Package sensor provides the sensor sources and the per-tick aggregator.
//
// Each Source wraps one physical or external reading behind a uniform
// "sample now" operation producing exactly one metric. The Aggregator
// fans out to every configured source once per tick, applying a
// per-source timeout and an overall tick deadline so that one stalled
// sensor can never stall the tick: a failing or slow source simply
// contributes no entry for its metric that tick.
//
// Hardware sources (CPU thermal zone, BME280 over I²C via periph.io)
// and the remote weather source live side by side; the weather source
// gets a higher timeout tolerance through its own HTTP client.
package sensor
