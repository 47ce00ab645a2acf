// Package decode crops camera frames to the aiming reticle and decodes
// barcodes in the region, picking the symbol closest to the reticle center
// and suppressing repeats.
package decode
