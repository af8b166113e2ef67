// Package io provides program image acquisition and headless host
// collaborators for the CHIP-8 emulator: ROM loading (Rom) and a text
// based display and keypad (Tape).
package io
