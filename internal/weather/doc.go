// Package weather reassembles and decodes the weather station's serial
// sentence stream.
//
// Sentences start with '$' and are only closed by the next '$'. Of the
// station's sentence types only MWV (wind angle and speed) is decoded;
// everything else is dropped without error.
package weather
