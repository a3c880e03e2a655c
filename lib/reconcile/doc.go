// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package reconcile maps letter senders onto roster contacts.
//
// Letters carry only an opaque sender principal id and, usually, a copy
// of the sender's avatar. Avatars record the system id of the console
// that created them; [AutoMatch] pairs a sender with the first roster
// contact whose avatar shares that system id. The operator then edits
// the result with [Mapping.Set] and [Mapping.Clear].
//
// Letters are first reduced to [Note] values by [Collect], which drops
// byte-identical copies, and then grouped per sender by [Senders] for
// display.
package reconcile
