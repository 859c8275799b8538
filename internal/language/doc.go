// Package language maps transcript language codes to pretrained aligner
// models.
//
// Codes are accepted as ISO 639-1, ISO 639-2 or the English word for the
// language, so "fr", "fra", "fre" and "French" all select french_mfa.
package language
