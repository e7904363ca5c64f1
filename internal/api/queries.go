package api

// GraphQL documents sent to the endpoint. These are opaque parameterized
// requests; the interesting behavior lives in how results are normalized
// and persisted.

const queryIntrospection = `
query {
  __schema {
    queryType {
      name
    }
  }
}`

const queryActivityList = `
query {
  me {
    activities {
      items {
        id
        time
        kind
        isHidden
      }
      totalCount
    }
  }
}`

const queryActivityShots = `
query GetActivityShots($id: ID!, $measurementType: RangeMeasurementTypes!) {
  node(id: $id) {
    ... on RangePracticeActivity {
      id
      kind
      time
      strokes {
        bayName
        time
        club
        measurement(measurementType: $measurementType) {
          ballSpeed
          ballSpin
          ballVelocity
          carry
          carryActual
          carrySide
          carrySideActual
          curve
          curveActual
          curveTotal
          curveTotalActual
          distanceFromPin
          distanceFromPinActual
          distanceFromPinTotal
          distanceFromPinTotalActual
          isValidMeasurement
          kind
          landingAngle
          landingPossitionCarry
          landingPossitionCarryActual
          landingPossitionTotal
          lastData
          launchAngle
          launchDirection
          maxHeight
          messageId
          spinAxis
          targetDistance
          time
          total
          totalActual
          totalSide
          totalSideActual
          windVelocity
          ballSpinEffective
          reducedAccuracy
        }
      }
    }
  }
}`

const queryRangeOverview = `
query {
  range {
    facilities {
      id
      name
      bays {
        id
        name
        number
      }
    }
    currentBay {
      id
      number
      name
    }
    availableBays {
      id
      number
      name
      status
    }
  }
}`
