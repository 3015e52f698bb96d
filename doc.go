/*
Package facelock provides a real time face identity locking and behavior
detection engine.

The engine consumes per frame face detections, matches each face against a
database of pre-enrolled identities, and maintains a lock on one target
identity across frames.  While a lock is held, changes in the face landmark
geometry are turned into discrete actions (movement, blink, smile) which are
recorded to a per session history file.

This root package holds the shared data model and the collaborator
interfaces.  The lock state machine lives in the locker package, session
history files in the history package, enrollment and identity matching in the
enroll package, and per frame orchestration in the engine package.  Adapters
for running the face detection and embedding models on the Rockchip NPU via
go-rknnlite are in the rknn package.
*/
package facelock
