// Package karaoke turns timed transcript words into subtitle blocks that
// highlight one word at a time.
//
// Each word of a line becomes its own block showing the full line, with the
// current word wrapped in the highlight color and the rest in the base color.
// Block times follow the words: a block ends when the next word on the line
// starts, and after all lines are laid out every block is stretched to meet
// the next one so the highlight never disappears between words.
package karaoke
