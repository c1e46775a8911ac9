// Package pngmeta extracts VRChat world identifiers from the text chunks of
// PNG screenshots.
//
// VRChat and companion tools (VRCX, VRChat's own print metadata) embed a JSON
// or XMP description in tEXt/zTXt/iTXt chunks. Extract walks the chunk stream
// in file order and returns the first quoted `wrld_` token it finds. Files with
// no such token are a normal outcome (empty WorldID); only unreadable files and
// byte streams that are not PNG chunk sequences produce a *ReadError.
package pngmeta
