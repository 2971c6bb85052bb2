// Package nmea decodes the handful of NMEA-0183 sentences a u-blox style
// receiver emits for position and error estimation:
//
//   - RMC: UTC time, date and lat/lon
//   - GGA: fix data (validated only)
//   - GBS: satellite fault detection (lat/lon error)
//   - GST: pseudorange noise statistics (lat/lon std dev)
//
// Callers hand in one complete sentence with CR/LF already stripped. Nothing
// here reads from a transport or reassembles fragments.
package nmea
