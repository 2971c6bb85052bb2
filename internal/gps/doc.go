package gps

// Package gps feeds NMEA sentences from a GNSS receiver into the nmea decoders.
//
// It owns everything the decoders deliberately leave out:
// - Reading lines from a serial port, a TCP feed or a capture file
// - Stripping CR/LF before a sentence is decoded
// - Folding decoded RMC/GGA/GBS/GST values into a Snapshot
// - Counting PPS edges when a timepulse GPIO is configured
