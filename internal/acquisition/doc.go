// Package acquisition schedules the rig's sampling loops.
//
// Three loops cooperate only through the shared record and the pulse
// counter:
//
//	weather  polls the station serial line and decodes MWV sentences
//	sample   reads torque, load cell, rotor rate and pitch
//	publish  raises the ready flag for the display consumer
//
// No loop exits on a device error or panic; the owning field simply keeps
// its last value.
package acquisition
