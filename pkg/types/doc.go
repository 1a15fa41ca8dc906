// Package types defines the product-configuration data model: schema-level
// types and properties, instance-level property values and links, the
// containers that hold them (product components and their generations),
// validation messages, and the repository interfaces the consistency
// engines consume.
//
// Values, links, and containers are plain in-memory structures. Every
// content mutation raises a ContentChangeEvent on the owning product
// component; identical old and new values raise nothing.
package types
