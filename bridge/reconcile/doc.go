// Package reconcile merges a freshly imported mesh into the meshes selected
// in the scene.
//
// For every eligible target the reconciler picks one of two strategies:
//
//   - Bake: the vertex counts match and the target has a Basis shape key.
//     Only the Basis layer receives the new positions; the target's own
//     vertex array and every other layer stay as they were.
//   - Replace: the target's vertex array and faces are swapped for a copy of
//     the imported geometry. When the counts differ the shape-key stack is
//     dropped too, because index correspondence is lost.
//
// In both cases the orientation captured at import time is baked into the
// coordinates first and the target's own orientation is reset.
//
// When no target is eligible the imported mesh is promoted: its orientation
// is baked in place and it stays in the scene under a fixed name.
//
// Mutation happens in place on the handles passed in; nothing is rolled back
// if the process dies halfway through a target.
package reconcile
